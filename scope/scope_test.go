package scope

import (
	"context"
	"testing"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/catalog/catalogtest"
	"github.com/dhamidi/jbind/typeinfo"
)

func newTestResolver(t *testing.T, unit Unit) *Resolver {
	t.Helper()
	mem := catalog.NewMemory()
	if _, err := catalogtest.Fill(context.Background(), mem); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	return New(mem, unit)
}

func TestResolveType(t *testing.T) {
	r := newTestResolver(t, Unit{
		Package: "com.example",
		Imports: []Import{
			{Name: "java.util.List"},
			{Name: "java.util.Map"},
			{Name: "java.util.function", Wildcard: true},
		},
		Enclosing: []string{"com.example.Outer"},
	})
	ctx := context.Background()

	tests := []struct {
		name  string
		want  string
		found bool
	}{
		{"int", "int", true},
		{"List", "java.util.List", true},
		{"Function", "java.util.function.Function", true},
		{"Inner", "com.example.Outer$Inner", true},
		{"Outer", "com.example.Outer", true},
		{"Box", "com.example.Box", true},
		{"String", "java.lang.String", true},
		{"Thread", "java.lang.Thread", true},
		{"Map.Entry", "java.util.Map$Entry", true},
		{"java.util.Map.Entry", "java.util.Map$Entry", true},
		{"java.util.ArrayList", "java.util.ArrayList", true},
		{"ArrayList", "com.example.ArrayList", false},
		{"Nowhere", "com.example.Nowhere", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := r.ResolveType(ctx, tt.name)
			if got != tt.want || found != tt.found {
				t.Errorf("ResolveType(%q) = %q, %v; want %q, %v", tt.name, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestImportShadowsPackage(t *testing.T) {
	r := newTestResolver(t, Unit{
		Package: "com.example",
		Imports: []Import{{Name: "org.other.Box"}},
	})
	got, found := r.ResolveType(context.Background(), "Box")
	if got != "org.other.Box" || !found {
		t.Errorf("ResolveType(Box) = %q, %v; want org.other.Box, true", got, found)
	}
}

func TestMethodCandidates(t *testing.T) {
	r := newTestResolver(t, Unit{
		Package: "com.example",
		Imports: []Import{
			{Name: "java.lang.String.valueOf", Static: true},
			{Name: "java.lang.Integer", Static: true, Wildcard: true},
			{Name: "com.missing.Util", Static: true, Wildcard: true},
		},
		Enclosing: []string{"com.example.Outer$Inner", "com.example.Outer"},
	})
	ctx := context.Background()

	got := r.MethodCandidates(ctx, "valueOf")
	want := []string{"com.example.Outer$Inner", "com.example.Outer", "java.lang.String", "java.lang.Integer"}
	assertStrings(t, "MethodCandidates(valueOf)", got, want)

	got = r.MethodCandidates(ctx, "intValue")
	want = []string{"com.example.Outer$Inner", "com.example.Outer", "java.lang.Integer"}
	assertStrings(t, "MethodCandidates(intValue)", got, want)
}

func TestConstructible(t *testing.T) {
	r := newTestResolver(t, Unit{
		Package:   "com.example",
		Imports:   []Import{{Name: "java.util.ArrayList"}, {Name: "java.util", Wildcard: true}},
		Enclosing: []string{"com.example.Outer"},
	})
	ctx := context.Background()
	got := r.Constructible(ctx)
	want := []string{"com.example.Outer", "com.example.Outer$Inner", "com.example.Outer$Nested", "java.util.ArrayList"}
	assertStrings(t, "Constructible", got, want)

	owning := r.Owning(ctx)
	if owning.Name != "com.example.Outer" || !owning.CanConstruct("java.util.ArrayList") || owning.CanConstruct("java.util.List") {
		t.Errorf("Owning = %+v", owning)
	}

	assertStrings(t, "ConstructorCandidates(Inner)", r.ConstructorCandidates(ctx, "Inner"), []string{"com.example.Outer$Inner"})
}

func TestVariableType(t *testing.T) {
	str := typeinfo.NewQualified("java.lang.String")
	integer := typeinfo.NewQualified("java.lang.Integer")
	list := typeinfo.NewParameterized("java.util.List", str)
	r := newTestResolver(t, Unit{
		Enclosing: []string{"com.example.Printer"},
		Variables: []Variable{
			{Name: "x", Type: list, Kind: Field},
			{Name: "x", Type: integer, Kind: Parameter, Offset: 10, End: 100},
			{Name: "x", Type: str, Kind: Local, Offset: 50, End: 80},
			{Name: "y", Type: str, Kind: Local, Offset: 20, End: 30},
		},
	})

	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{"x", 5, "java.util.List<java.lang.String>"},
		{"x", 20, "java.lang.Integer"},
		{"x", 60, "java.lang.String"},
		{"x", 90, "java.lang.Integer"},
		{"x", 150, "java.util.List<java.lang.String>"},
		{"y", 25, "java.lang.String"},
		{"y", 30, ""},
	}
	for _, tt := range tests {
		got, ok := r.VariableType(tt.name, tt.offset)
		name := ""
		if ok {
			name = got.Name()
		}
		if name != tt.want {
			t.Errorf("VariableType(%s, %d) = %q, want %q", tt.name, tt.offset, name, tt.want)
		}
	}
}

func TestReceiver(t *testing.T) {
	r := newTestResolver(t, Unit{
		Variables: []Variable{{Name: "box", Type: typeinfo.NewParameterized("com.example.Box", typeinfo.NewQualified("java.lang.String")), Kind: Local}},
	})
	ctx := context.Background()

	typ, static, ok := r.Receiver(ctx, "box", 0)
	if !ok || static || typ.QualifiedName() != "com.example.Box" {
		t.Errorf("Receiver(box) = %v, %v, %v", typ, static, ok)
	}
	typ, static, ok = r.Receiver(ctx, "Integer", 0)
	if !ok || !static || typ.Name() != "java.lang.Integer" {
		t.Errorf("Receiver(Integer) = %v, %v, %v", typ, static, ok)
	}
	if _, _, ok := r.Receiver(ctx, "nothing", 0); ok {
		t.Error("Receiver(nothing) resolved")
	}
}

func assertStrings(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", what, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %q, want %q", what, i, got[i], want[i])
		}
	}
}
