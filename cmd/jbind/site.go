package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/resolve"
	"github.com/dhamidi/jbind/scope"
	"github.com/dhamidi/jbind/typeinfo"
)

// unitSpec describes the compilation unit around call sites. Names in
// sites are resolved against it the way javac would.
type unitSpec struct {
	Package   string     `yaml:"package"`
	Imports   []string   `yaml:"imports"`
	Enclosing []string   `yaml:"enclosing"`
	Sites     []siteSpec `yaml:"sites"`
}

// siteSpec is one call site as written on the command line or in a batch
// file. Types are written in source form.
type siteSpec struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Class    []string `yaml:"class"`
	Receiver string   `yaml:"receiver"`
	Member   string   `yaml:"member"`
	Args     []string `yaml:"args"`
	Super    bool     `yaml:"super"`
	// Bound marks a method reference taken on an expression.
	Bound bool `yaml:"bound"`
}

const (
	kindMethod      = "method"
	kindConstructor = "constructor"
	kindField       = "field"
	kindReference   = "reference"
)

// label names the site in output.
func (s *siteSpec) label() string {
	if s.Name != "" {
		return s.Name
	}
	target := strings.Join(s.Class, ",")
	if s.Receiver != "" {
		target = s.Receiver
	}
	switch s.Kind {
	case kindConstructor:
		return "new " + target + "(" + strings.Join(s.Args, ", ") + ")"
	case kindField:
		return target + "." + s.Member
	case kindReference:
		return target + "::" + s.Member
	}
	return target + "." + s.Member + "(" + strings.Join(s.Args, ", ") + ")"
}

func (u *unitSpec) resolver(cat catalog.Catalog, units []string) (*scope.Resolver, error) {
	unit := scope.Unit{Package: u.Package, Enclosing: u.Enclosing, Units: units}
	for _, decl := range u.Imports {
		imp, err := scope.ParseImport(decl)
		if err != nil {
			return nil, err
		}
		unit.Imports = append(unit.Imports, imp)
	}
	return scope.New(cat, unit), nil
}

// site turns s into a resolution site, qualifying every name it contains
// through r.
func (s *siteSpec) site(ctx context.Context, r *scope.Resolver) (*resolve.Site, error) {
	owning := r.Owning(ctx)

	var classes []string
	for _, name := range s.Class {
		full, ok := r.ResolveType(ctx, name)
		if !ok {
			log.Infof("unknown class %s, assuming %s", name, full)
		}
		classes = append(classes, full)
	}
	if len(classes) == 0 && s.Receiver == "" && (s.Kind == "" || s.Kind == kindMethod) {
		classes = r.MethodCandidates(ctx, s.Member)
	}

	var receiver typeinfo.TypeInfo
	if s.Receiver != "" {
		t, err := parseType(ctx, r, s.Receiver)
		if err != nil {
			return nil, err
		}
		receiver = t
	}

	args := make([]typeinfo.TypeInfo, len(s.Args))
	for i, a := range s.Args {
		t, err := parseType(ctx, r, a)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}

	switch s.Kind {
	case "", kindMethod:
		if s.Member == "" {
			return nil, fmt.Errorf("site %s: method sites need a member", s.label())
		}
		return resolve.MethodSite(&resolve.Request{
			Owning: owning, Classes: classes, Receiver: receiver,
			Member: s.Member, Arguments: args, Super: s.Super,
		}), nil
	case kindConstructor:
		if len(classes) == 0 && receiver == nil {
			return nil, fmt.Errorf("site %s: constructor sites need a class", s.label())
		}
		if receiver != nil {
			classes = append(classes, receiver.QualifiedName())
		}
		// a class named at the site is constructible there
		if len(owning.Constructible) > 0 {
			owning.Constructible = append(owning.Constructible, classes...)
		}
		return resolve.MethodSite(&resolve.Request{
			Owning: owning, Classes: classes,
			Arguments: args, Constructor: true, Super: s.Super,
		}), nil
	case kindField:
		return resolve.FieldSite(&resolve.FieldRequest{
			Owning: owning, Classes: classes, Receiver: receiver, Name: s.Member,
		}), nil
	case kindReference:
		return resolve.ReferenceSite(&resolve.ReferenceRequest{
			Owning: owning, Classes: classes, Receiver: receiver,
			Member: s.Member, Bound: s.Bound,
		}), nil
	}
	return nil, fmt.Errorf("site %s: unknown kind %q", s.label(), s.Kind)
}

// parseType reads a source-form type and qualifies its class names.
func parseType(ctx context.Context, r *scope.Resolver, s string) (typeinfo.TypeInfo, error) {
	t, err := typeinfo.Parse(s)
	if err != nil {
		return nil, err
	}
	return qualify(ctx, r, t), nil
}

func qualify(ctx context.Context, r *scope.Resolver, t typeinfo.TypeInfo) typeinfo.TypeInfo {
	switch t := t.(type) {
	case *typeinfo.Qualified:
		return typeinfo.NewQualified(qualifyName(ctx, r, t.QualifiedName()))
	case *typeinfo.Parameterized:
		args := t.TypeArguments()
		for i, a := range args {
			args[i] = qualify(ctx, r, a)
		}
		return typeinfo.NewParameterized(qualifyName(ctx, r, t.QualifiedName()), args...)
	case *typeinfo.Array:
		return typeinfo.NewArray(qualify(ctx, r, t.Element()), t.Dimension())
	case *typeinfo.Vararg:
		return typeinfo.NewVararg(qualify(ctx, r, t.Element()))
	case *typeinfo.FormalTypeParameter:
		return typeinfo.NewFormal(t.Symbol(), qualify(ctx, r, t.Bound()))
	}
	return t
}

func qualifyName(ctx context.Context, r *scope.Resolver, name string) string {
	if catalog.IsQualified(name) {
		return name
	}
	if full, ok := r.ResolveType(ctx, name); ok {
		return full
	}
	return name
}
