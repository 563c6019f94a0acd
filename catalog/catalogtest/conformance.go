package catalogtest

import (
	"context"
	"errors"
	"testing"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/java"
)

// TestStore fills store with Library and checks every lookup. store must
// be empty.
func TestStore(t *testing.T, store catalog.Store) {
	t.Helper()
	ctx := context.Background()
	ids, err := Fill(ctx, store)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	t.Run("classes by qualified name", func(t *testing.T) {
		got, err := store.LookupClasses(ctx, nil, "java.lang.String")
		if err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if len(got) != 1 || got[0].Name != "java.lang.String" || got[0].Unit != RuntimeUnit {
			t.Fatalf("LookupClasses(String) = %v", classNames(got))
		}
		if got[0].ID != ids["java.lang.String"] {
			t.Errorf("ID = %d, want %d", got[0].ID, ids["java.lang.String"])
		}
		if len(got[0].ParameterizedSupertypes) != 1 {
			t.Errorf("ParameterizedSupertypes = %v", got[0].ParameterizedSupertypes)
		}
	})

	t.Run("classes restricted to units", func(t *testing.T) {
		got, err := store.LookupClasses(ctx, []string{AppUnit}, "java.lang.String")
		if err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("LookupClasses(app, String) = %v, want none", classNames(got))
		}
		got, err = store.LookupClasses(ctx, []string{AppUnit, RuntimeUnit}, "java.lang.String")
		if err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("LookupClasses(app+rt, String) = %v", classNames(got))
		}
	})

	t.Run("classes by simple name", func(t *testing.T) {
		got, err := store.LookupClasses(ctx, nil, "Entry")
		if err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if len(got) != 1 || got[0].Name != "java.util.Map$Entry" {
			t.Fatalf("LookupClasses(Entry) = %v", classNames(got))
		}
		if !got[0].IsInner || !got[0].IsStatic || !got[0].IsInterface() {
			t.Errorf("Map$Entry flags: inner=%v static=%v interface=%v", got[0].IsInner, got[0].IsStatic, got[0].IsInterface())
		}
	})

	t.Run("class by id", func(t *testing.T) {
		c, err := store.LookupClassByID(ctx, ids["com.example.Box"])
		if err != nil {
			t.Fatalf("LookupClassByID: %v", err)
		}
		if c.Name != "com.example.Box" || len(c.TypeParameters) != 1 {
			t.Errorf("LookupClassByID = %s %v", c.Name, c.TypeParameters)
		}
		if _, err := store.LookupClassByID(ctx, 99999); !errors.Is(err, catalog.ErrClassNotFound) {
			t.Errorf("LookupClassByID(99999) error = %v, want ErrClassNotFound", err)
		}
	})

	t.Run("methods in declaration order", func(t *testing.T) {
		got, err := store.LookupMethods(ctx, []java.ClassID{ids["java.lang.String"]}, "valueOf")
		if err != nil {
			t.Fatalf("LookupMethods: %v", err)
		}
		want := []string{"java.lang.Object", "boolean", "char", "int", "long", "double"}
		if len(got) != len(want) {
			t.Fatalf("LookupMethods(valueOf) = %v", got)
		}
		for i, m := range got {
			if m.Arguments[0].Name() != want[i] {
				t.Errorf("valueOf[%d] argument = %s, want %s", i, m.Arguments[0].Name(), want[i])
			}
			if i > 0 && m.Order <= got[i-1].Order {
				t.Errorf("valueOf[%d] order %d not after %d", i, m.Order, got[i-1].Order)
			}
		}
	})

	t.Run("methods follow class order", func(t *testing.T) {
		classIDs := []java.ClassID{ids["java.util.ArrayList"], ids["java.util.List"]}
		got, err := store.LookupMethods(ctx, classIDs, "add")
		if err != nil {
			t.Fatalf("LookupMethods: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("LookupMethods(add) = %v", got)
		}
		if got[0].Class.Name != "java.util.ArrayList" || got[1].Class.Name != "java.util.List" {
			t.Errorf("LookupMethods(add) order = %v", got)
		}
		if got[0].Arguments[0].Name() != "E" {
			t.Errorf("ArrayList.add argument = %s, want E", got[0].Arguments[0].Name())
		}
	})

	t.Run("all methods", func(t *testing.T) {
		got, err := store.LookupMethods(ctx, []java.ClassID{ids["com.example.C"]}, "")
		if err != nil {
			t.Fatalf("LookupMethods: %v", err)
		}
		if len(got) != 2 || !got[0].IsConstructor || got[0].Name != "C" || got[1].Name != "f" {
			t.Errorf("LookupMethods(C, all) = %v", got)
		}
	})

	t.Run("inner constructor", func(t *testing.T) {
		got, err := store.LookupMethods(ctx, []java.ClassID{ids["com.example.Outer$Inner"]}, "Inner")
		if err != nil {
			t.Fatalf("LookupMethods: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("LookupMethods(Inner) = %v", got)
		}
		m := got[0]
		if m.InnerConstructor == nil || m.InnerConstructor.Prefix() != "Outer$" {
			t.Fatalf("InnerConstructor = %v", m.InnerConstructor)
		}
		if len(m.Arguments) != 1 || m.Arguments[0].Name() != "java.lang.String" {
			t.Errorf("Arguments = %v, want [java.lang.String]", m.Arguments)
		}
	})

	t.Run("fields", func(t *testing.T) {
		got, err := store.LookupFields(ctx, []java.ClassID{ids["com.example.Box"], ids["java.lang.Integer"]}, "")
		if err != nil {
			t.Fatalf("LookupFields: %v", err)
		}
		if len(got) != 2 || got[0].Name != "value" || got[1].Name != "MAX_VALUE" {
			t.Fatalf("LookupFields = %v", fieldNames(got))
		}
		if got[0].Type.Name() != "T" {
			t.Errorf("Box.value type = %s, want T", got[0].Type.Name())
		}
		if !got[1].IsStatic {
			t.Error("Integer.MAX_VALUE is not static")
		}
	})

	t.Run("supertypes", func(t *testing.T) {
		id := ids["java.lang.String"]
		supers, err := store.LookupSuperTypeNames(ctx, id, catalog.SuperClass)
		if err != nil {
			t.Fatalf("LookupSuperTypeNames: %v", err)
		}
		if len(supers) != 1 || supers[0] != "java.lang.Object" {
			t.Errorf("superclass = %v", supers)
		}
		ifaces, err := store.LookupSuperTypeNames(ctx, id, catalog.Interface)
		if err != nil {
			t.Fatalf("LookupSuperTypeNames: %v", err)
		}
		if len(ifaces) != 2 || ifaces[0] != "java.lang.CharSequence" || ifaces[1] != "java.lang.Comparable" {
			t.Errorf("interfaces = %v", ifaces)
		}
		root, err := store.LookupSuperTypeNames(ctx, ids["java.lang.Object"], catalog.SuperClass)
		if err != nil {
			t.Fatalf("LookupSuperTypeNames: %v", err)
		}
		if len(root) != 0 {
			t.Errorf("Object superclass = %v, want none", root)
		}
	})

	t.Run("inner class names", func(t *testing.T) {
		classIDs := []java.ClassID{ids["java.util.Map"], ids["com.example.Outer"]}
		got, err := store.LookupInnerClassNames(ctx, classIDs, nil)
		if err != nil {
			t.Fatalf("LookupInnerClassNames: %v", err)
		}
		want := []string{"com.example.Outer$Inner", "com.example.Outer$Nested", "java.util.Map$Entry"}
		if len(got) != len(want) {
			t.Fatalf("LookupInnerClassNames = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("LookupInnerClassNames[%d] = %q, want %q", i, got[i], want[i])
			}
		}
		app, err := store.LookupInnerClassNames(ctx, classIDs, []string{AppUnit})
		if err != nil {
			t.Fatalf("LookupInnerClassNames: %v", err)
		}
		if len(app) != 2 {
			t.Errorf("LookupInnerClassNames(app) = %v", app)
		}
	})

	t.Run("re-adding keeps id", func(t *testing.T) {
		for _, e := range Library() {
			if e.Declaration.Class.Name != "com.example.A" {
				continue
			}
			id, err := store.Add(ctx, e.Unit, e.Declaration)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if id != ids["com.example.A"] {
				t.Errorf("re-added id = %d, want %d", id, ids["com.example.A"])
			}
		}
		got, err := store.LookupClasses(ctx, nil, "com.example.A")
		if err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("LookupClasses(A) after re-add = %v", classNames(got))
		}
		methods, err := store.LookupMethods(ctx, []java.ClassID{ids["com.example.A"]}, "")
		if err != nil {
			t.Fatalf("LookupMethods: %v", err)
		}
		if len(methods) != 2 {
			t.Errorf("methods after re-add = %v", methods)
		}
	})
}

func classNames(cs []*java.ClassInfo) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func fieldNames(fs []*java.FieldInfo) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}
