package resolve

import (
	"context"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/typeinfo"
)

// builtinSupertypes stands in for classes a catalog may not hold.
var builtinSupertypes = map[string][]string{
	"java.lang.String":       {"java.lang.Object", "java.io.Serializable", "java.lang.Comparable", "java.lang.CharSequence"},
	"java.lang.Number":       {"java.lang.Object", "java.io.Serializable"},
	"java.lang.Integer":      {"java.lang.Number", "java.lang.Comparable"},
	"java.lang.Long":         {"java.lang.Number", "java.lang.Comparable"},
	"java.lang.Short":        {"java.lang.Number", "java.lang.Comparable"},
	"java.lang.Byte":         {"java.lang.Number", "java.lang.Comparable"},
	"java.lang.Float":        {"java.lang.Number", "java.lang.Comparable"},
	"java.lang.Double":       {"java.lang.Number", "java.lang.Comparable"},
	"java.lang.Character":    {"java.lang.Object", "java.io.Serializable", "java.lang.Comparable"},
	"java.lang.Boolean":      {"java.lang.Object", "java.io.Serializable", "java.lang.Comparable"},
	"java.lang.CharSequence": {"java.lang.Object"},
	"java.lang.Comparable":   {"java.lang.Object"},
	"java.io.Serializable":   {"java.lang.Object"},
}

// level is one class reached while walking up from a receiver.
type level struct {
	name     string
	class    *java.ClassInfo
	distance int
	// bindings maps the formals of class as seen from the receiver.
	bindings typeinfo.Bindings
}

// lookupClass returns the first class named name in the engine's units.
func (e *Engine) lookupClass(ctx context.Context, name string) *java.ClassInfo {
	classes, err := e.catalog.LookupClasses(ctx, e.units, name)
	if err != nil {
		log.Warningf("failed to look up %s: %s", name, err)
		return nil
	}
	if len(classes) == 0 {
		return nil
	}
	return classes[0]
}

// supertypeNames lists the direct supertypes of a class: superclass first,
// then interfaces in declaration order. Interfaces get java.lang.Object.
func (e *Engine) supertypeNames(ctx context.Context, name string, class *java.ClassInfo) []string {
	if class == nil {
		return builtinSupertypes[name]
	}
	var out []string
	supers, err := e.catalog.LookupSuperTypeNames(ctx, class.ID, catalog.SuperClass)
	if err != nil {
		log.Warningf("failed to look up superclass of %s: %s", name, err)
	}
	out = append(out, supers...)
	ifaces, err := e.catalog.LookupSuperTypeNames(ctx, class.ID, catalog.Interface)
	if err != nil {
		log.Warningf("failed to look up interfaces of %s: %s", name, err)
	}
	out = append(out, ifaces...)
	if class.IsInterface() && !contains(out, typeinfo.ObjectName) {
		out = append(out, typeinfo.ObjectName)
	}
	return out
}

// walk visits the supertype graph of root breadth first, each class once
// at its shortest distance. visit returning false stops the walk.
func (e *Engine) walk(ctx context.Context, root string, bindings typeinfo.Bindings, visit func(level) bool) {
	start := level{name: root, class: e.lookupClass(ctx, root), bindings: bindings}
	queue := []level{start}
	seen := map[string]bool{root: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !visit(cur) {
			return
		}
		for _, s := range e.supertypeNames(ctx, cur.name, cur.class) {
			if seen[s] {
				continue
			}
			seen[s] = true
			next := level{name: s, class: e.lookupClass(ctx, s), distance: cur.distance + 1}
			next.bindings = supertypeBindings(cur, next.class)
			queue = append(queue, next)
		}
	}
}

// supertypeBindings maps the formals of super through the arguments cur
// passes to it.
func supertypeBindings(cur level, super *java.ClassInfo) typeinfo.Bindings {
	if super == nil || len(super.TypeParameters) == 0 || cur.class == nil {
		return nil
	}
	args, ok := cur.class.SupertypeArguments(super.Name)
	if !ok {
		return nil
	}
	b := make(typeinfo.Bindings, len(super.TypeParameters))
	for i, f := range super.TypeParameters {
		if i < len(args) {
			b[f.Symbol()] = typeinfo.Substitute(args[i], cur.bindings)
		}
	}
	return b
}

// distance is the number of supertype hops from one class to another.
func (e *Engine) distance(ctx context.Context, from, to string) (int, bool) {
	if from == to {
		return 0, true
	}
	found := -1
	e.walk(ctx, from, nil, func(l level) bool {
		if l.name == to {
			found = l.distance
			return false
		}
		return true
	})
	if found < 0 {
		if to == typeinfo.ObjectName {
			// every class reaches Object even when the catalog stops short
			return 1, true
		}
		return 0, false
	}
	return found, true
}

// asSuper views t as an instance of the class named target, carrying type
// arguments through parameterized supertypes: ArrayList<String> as
// java.util.Collection is Collection<String>.
func (e *Engine) asSuper(ctx context.Context, t typeinfo.TypeInfo, target string) (typeinfo.TypeInfo, bool) {
	if t.Kind() == typeinfo.KindFormal {
		t = t.(*typeinfo.FormalTypeParameter).Bound()
	}
	if t.Kind() != typeinfo.KindQualified && t.Kind() != typeinfo.KindParameterized {
		return nil, false
	}
	root := t.QualifiedName()
	var result typeinfo.TypeInfo
	e.walk(ctx, root, e.bindingsOf(ctx, t), func(l level) bool {
		if l.name != target {
			return true
		}
		if l.class == nil || len(l.class.TypeParameters) == 0 || l.bindings == nil {
			result = typeinfo.NewQualified(target)
			return false
		}
		args := make([]typeinfo.TypeInfo, len(l.class.TypeParameters))
		for i, f := range l.class.TypeParameters {
			if b, ok := l.bindings[f.Symbol()]; ok {
				args[i] = b
			} else {
				args[i] = f
			}
		}
		result = typeinfo.NewParameterized(target, args...)
		return false
	})
	return result, result != nil
}

// bindingsOf binds the formals of t's class to t's type arguments. A raw
// or non-generic type yields no bindings.
func (e *Engine) bindingsOf(ctx context.Context, t typeinfo.TypeInfo) typeinfo.Bindings {
	p, ok := t.(*typeinfo.Parameterized)
	if !ok || p.Arity() == 0 {
		return nil
	}
	class := e.lookupClass(ctx, p.QualifiedName())
	if class == nil {
		return nil
	}
	args := p.TypeArguments()
	b := make(typeinfo.Bindings, len(class.TypeParameters))
	for i, f := range class.TypeParameters {
		if i < len(args) {
			b[f.Symbol()] = args[i]
		}
	}
	return b
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
