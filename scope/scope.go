// Package scope turns the facts of a compilation unit (package, imports,
// enclosing classes, declared variables) into the qualified class names a
// call site can see.
package scope

import (
	"context"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/typeinfo"
)

var log = commonlog.GetLogger("jbind.scope")

type VariableKind int

const (
	Field VariableKind = iota
	Parameter
	Local
)

// Variable is a declaration visible to call sites. Offsets are source
// offsets; a zero End means the variable stays in scope to the end of the
// unit.
type Variable struct {
	Name   string
	Type   typeinfo.TypeInfo
	Kind   VariableKind
	Offset int
	End    int
}

// Unit describes one compilation unit as far as resolution needs it.
type Unit struct {
	Package string
	Imports []Import
	// Enclosing is the class chain around the call site, innermost first.
	Enclosing []string
	Variables []Variable
	// Units restricts catalog lookups to these distribution units.
	Units []string
}

type Resolver struct {
	catalog catalog.Catalog
	unit    Unit
}

func New(cat catalog.Catalog, unit Unit) *Resolver {
	return &Resolver{catalog: cat, unit: unit}
}

func (r *Resolver) Unit() Unit { return r.unit }

var javaLangTypes = map[string]bool{
	"Object": true, "String": true, "Class": true, "System": true,
	"Throwable": true, "Exception": true, "RuntimeException": true, "Error": true,
	"Integer": true, "Long": true, "Short": true, "Byte": true,
	"Float": true, "Double": true, "Character": true, "Boolean": true,
	"Number": true, "Comparable": true, "CharSequence": true,
	"Iterable": true, "Cloneable": true, "Runnable": true,
	"Thread": true, "StringBuilder": true, "StringBuffer": true,
	"Math": true, "Enum": true, "Record": true, "Void": true,
	"Override": true, "Deprecated": true, "SuppressWarnings": true, "FunctionalInterface": true,
}

// ResolveType returns the binary name a type name refers to. Names are
// tried in order: enclosing classes and their member classes, single-type
// imports, the unit's package, on-demand imports, java.lang. The second
// result is false when the catalog knows no such class; the name is then
// qualified with the unit's package.
func (r *Resolver) ResolveType(ctx context.Context, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if _, ok := typeinfo.PrimitiveByName(name); ok || name == "void" {
		return name, true
	}

	head, rest, qualified := strings.Cut(name, ".")
	if qualified {
		if outer, ok := r.resolveSimple(ctx, head); ok {
			nested := outer + "$" + strings.ReplaceAll(rest, ".", "$")
			if r.exists(ctx, nested) {
				return nested, true
			}
		}
		return r.resolveQualified(ctx, name)
	}

	if full, ok := r.resolveSimple(ctx, name); ok {
		return full, true
	}
	if r.unit.Package != "" {
		return r.unit.Package + "." + name, false
	}
	return name, false
}

func (r *Resolver) resolveSimple(ctx context.Context, simpleName string) (string, bool) {
	for _, enclosing := range r.unit.Enclosing {
		if java.SimpleName(enclosing) == simpleName {
			return enclosing, true
		}
		if inner := enclosing + "$" + simpleName; r.isInnerClass(ctx, enclosing, inner) {
			return inner, true
		}
	}

	for _, imp := range r.unit.Imports {
		if imp.Wildcard || imp.Static {
			continue
		}
		if imp.SimpleName() == simpleName {
			if full, ok := r.resolveQualified(ctx, imp.Name); ok {
				return full, true
			}
			return imp.Name, true
		}
	}

	if r.unit.Package != "" {
		if candidate := r.unit.Package + "." + simpleName; r.exists(ctx, candidate) {
			return candidate, true
		}
	}

	for _, imp := range r.unit.Imports {
		if !imp.Wildcard {
			continue
		}
		if candidate := imp.Name + "." + simpleName; !imp.Static && r.exists(ctx, candidate) {
			return candidate, true
		}
		if owner, ok := r.resolveQualified(ctx, imp.Name); ok {
			if candidate := owner + "$" + simpleName; r.exists(ctx, candidate) {
				return candidate, true
			}
		}
	}

	candidate := "java.lang." + simpleName
	if r.exists(ctx, candidate) || javaLangTypes[simpleName] {
		return candidate, true
	}
	return "", false
}

// resolveQualified maps a canonical name such as java.util.Map.Entry to
// the binary name java.util.Map$Entry by moving '$' leftwards until the
// catalog knows the class.
func (r *Resolver) resolveQualified(ctx context.Context, name string) (string, bool) {
	candidate := name
	for {
		if r.exists(ctx, candidate) {
			return candidate, true
		}
		i := strings.LastIndexByte(candidate, '.')
		if i < 0 {
			return name, false
		}
		candidate = candidate[:i] + "$" + candidate[i+1:]
	}
}

func (r *Resolver) exists(ctx context.Context, name string) bool {
	classes, err := r.catalog.LookupClasses(ctx, r.unit.Units, name)
	if err != nil {
		log.Warningf("failed to look up %s: %s", name, err)
		return false
	}
	return len(classes) > 0
}

func (r *Resolver) classIDs(ctx context.Context, name string) []java.ClassID {
	classes, err := r.catalog.LookupClasses(ctx, r.unit.Units, name)
	if err != nil {
		log.Warningf("failed to look up %s: %s", name, err)
		return nil
	}
	ids := make([]java.ClassID, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
	}
	return ids
}

func (r *Resolver) isInnerClass(ctx context.Context, outer, inner string) bool {
	ids := r.classIDs(ctx, outer)
	if len(ids) == 0 {
		return false
	}
	names, err := r.catalog.LookupInnerClassNames(ctx, ids, r.unit.Units)
	if err != nil {
		log.Warningf("failed to look up inner classes of %s: %s", outer, err)
		return false
	}
	for _, n := range names {
		if n == inner {
			return true
		}
	}
	return false
}

// MethodCandidates lists the classes an unqualified call of member may
// bind to: the enclosing chain innermost first, then the classes of
// static imports that can supply member.
func (r *Resolver) MethodCandidates(ctx context.Context, member string) []string {
	out := append([]string(nil), r.unit.Enclosing...)
	for _, imp := range r.unit.Imports {
		if !imp.Static {
			continue
		}
		if !imp.Wildcard && imp.Member() != member {
			continue
		}
		owner, ok := r.resolveQualified(ctx, imp.Owner())
		if !ok {
			log.Debugf("static import %s: unknown class %s", imp, imp.Owner())
			continue
		}
		out = append(out, owner)
	}
	return dedupe(out)
}

// ConstructorCandidates lists the classes "new typeName(...)" may
// instantiate.
func (r *Resolver) ConstructorCandidates(ctx context.Context, typeName string) []string {
	full, ok := r.ResolveType(ctx, typeName)
	if !ok {
		log.Debugf("constructor of unknown type %s", typeName)
	}
	return []string{full}
}

// Constructible lists the classes the unit names directly: the enclosing
// chain, their member classes and single-type imports.
func (r *Resolver) Constructible(ctx context.Context) []string {
	out := append([]string(nil), r.unit.Enclosing...)
	var ids []java.ClassID
	for _, enclosing := range r.unit.Enclosing {
		ids = append(ids, r.classIDs(ctx, enclosing)...)
	}
	if len(ids) > 0 {
		inner, err := r.catalog.LookupInnerClassNames(ctx, ids, r.unit.Units)
		if err != nil {
			log.Warningf("failed to look up inner classes: %s", err)
		}
		out = append(out, inner...)
	}
	for _, imp := range r.unit.Imports {
		if imp.Static || imp.Wildcard {
			continue
		}
		full, _ := r.resolveQualified(ctx, imp.Name)
		out = append(out, full)
	}
	return dedupe(out)
}

// Owning builds the resolution context of a call site in the innermost
// enclosing class. typeArgs bind that class's formals by position.
func (r *Resolver) Owning(ctx context.Context, typeArgs ...typeinfo.TypeInfo) *java.OwningClassInfo {
	var name string
	if len(r.unit.Enclosing) > 0 {
		name = r.unit.Enclosing[0]
	}
	return java.NewOwningClassInfo(name, r.Constructible(ctx), typeArgs...)
}

// VariableType returns the type of the variable name visible at offset.
// Locals shadow parameters, which shadow fields.
func (r *Resolver) VariableType(name string, offset int) (typeinfo.TypeInfo, bool) {
	var best *Variable
	for i := range r.unit.Variables {
		v := &r.unit.Variables[i]
		if v.Name != name || !v.visibleAt(offset) {
			continue
		}
		if best == nil || v.Kind > best.Kind || (v.Kind == best.Kind && v.Offset > best.Offset) {
			best = v
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Type, true
}

func (v *Variable) visibleAt(offset int) bool {
	if v.Kind == Field {
		return true
	}
	return offset >= v.Offset && (v.End == 0 || offset < v.End)
}

// Receiver resolves the expression before ".member": a variable visible at
// offset or a type name. It returns the receiver's type and whether the
// receiver is a type, making the access static.
func (r *Resolver) Receiver(ctx context.Context, expr string, offset int) (typeinfo.TypeInfo, bool, bool) {
	if t, ok := r.VariableType(expr, offset); ok {
		return t, false, true
	}
	if full, ok := r.ResolveType(ctx, expr); ok {
		return typeinfo.NewQualified(full), true, true
	}
	return nil, false, false
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
