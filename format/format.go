// Package format renders declarations and resolution results for the
// command line, as indented JSON or as tab-separated lines.
package format

import (
	"io"

	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/resolve"
	"github.com/dhamidi/jbind/typeinfo"
)

// Declaration is a class together with its members.
type Declaration struct {
	Class   *java.ClassInfo
	Methods []*java.MethodInfo
	Fields  []*java.FieldInfo
}

// Resolution is the outcome of resolving one call site. Field is set for
// field accesses; Function for method references.
type Resolution struct {
	Site     string
	Result   *resolve.Result
	Field    *resolve.FieldResult
	Function *typeinfo.Function
	Err      error
}

// FromOutcome converts a session outcome.
func FromOutcome(site string, o *resolve.Outcome) *Resolution {
	r := &Resolution{Site: site, Result: o.Result, Field: o.Field, Err: o.Err}
	if ref := o.Reference; ref != nil {
		r.Result = &resolve.Result{Members: ref.Members, Exact: len(ref.Members) == 1}
		r.Function = ref.Function
	}
	return r
}

func (r *Resolution) status() string {
	switch {
	case r.Err != nil:
		return "unresolved"
	case r.Field != nil:
		return "exact"
	case r.Result == nil:
		return "unresolved"
	case r.Result.Exact:
		return "exact"
	}
	return "approximate"
}

type Encoder interface {
	EncodeDeclaration(d *Declaration) error
	EncodeResolution(r *Resolution) error
	EncodeExplanation(site string, ex *resolve.Explanation) error
	EncodeAudit(a resolve.AuditSnapshot) error
}

// New returns the encoder for name: "json" or "line".
func New(name string, w io.Writer) (Encoder, bool) {
	switch name {
	case "json":
		return NewJSONEncoder(w), true
	case "line":
		return NewLineEncoder(w), true
	}
	return nil, false
}

func methodModifiers(m *java.MethodInfo) []string {
	var mods []string
	if m.IsStatic {
		mods = append(mods, "static")
	}
	if m.IsFinal {
		mods = append(mods, "final")
	}
	if m.IsAbstract {
		mods = append(mods, "abstract")
	}
	if m.IsSynchronized {
		mods = append(mods, "synchronized")
	}
	if m.IsBridge {
		mods = append(mods, "bridge")
	}
	if m.IsVarargs {
		mods = append(mods, "varargs")
	}
	return mods
}

func fieldModifiers(f *java.FieldInfo) []string {
	var mods []string
	if f.IsStatic {
		mods = append(mods, "static")
	}
	if f.IsFinal {
		mods = append(mods, "final")
	}
	if f.IsVolatile {
		mods = append(mods, "volatile")
	}
	if f.IsTransient {
		mods = append(mods, "transient")
	}
	if f.IsEnumConstant {
		mods = append(mods, "enum")
	}
	return mods
}

func classModifiers(c *java.ClassInfo) []string {
	var mods []string
	if c.IsStatic {
		mods = append(mods, "static")
	}
	if c.IsFinal {
		mods = append(mods, "final")
	}
	if c.IsAbstract && !c.IsInterface() {
		mods = append(mods, "abstract")
	}
	if c.IsInner {
		mods = append(mods, "nested")
	}
	return mods
}

// memberName is the name of m as written at a call site; inner class
// constructors carry their outer class prefix.
func memberName(m *java.MethodInfo) string {
	if m.InnerConstructor != nil {
		return m.InnerConstructor.Prefix() + m.Name
	}
	return m.Name
}

func returnName(m *java.MethodInfo) string {
	if m.IsConstructor || m.Return == nil {
		return ""
	}
	return m.Return.Name()
}
