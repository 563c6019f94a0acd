package signature

import (
	"github.com/dhamidi/jbind/typeinfo"
)

// ResolveGenerics substitutes bindings into a method signature and
// re-serializes it. Type parameters that received a binding are dropped
// from the method's type parameter list.
func ResolveGenerics(sig string, bindings typeinfo.Bindings) (string, error) {
	ms, err := DecodeMethodSignature(sig, nil)
	if err != nil {
		return "", err
	}
	out := &MethodSignature{
		Arguments: typeinfo.SubstituteAll(ms.Arguments, bindings),
		Return:    typeinfo.Substitute(ms.Return, bindings),
		Throws:    typeinfo.SubstituteAll(ms.Throws, bindings),
	}
	for _, f := range ms.TypeParameters {
		if _, bound := bindings[f.Symbol()]; bound {
			continue
		}
		out.TypeParameters = append(out.TypeParameters, typeinfo.Substitute(f, bindings).(*typeinfo.FormalTypeParameter))
	}
	return EncodeMethod(out)
}
