package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/jbind/catalog/catalogtest"
	"github.com/dhamidi/jbind/catalog/sqlstore"
)

// newCatalogFile writes the test library into a fresh sqlite catalog.
func newCatalogFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jbind.db")
	store, err := sqlstore.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := catalogtest.Fill(context.Background(), store); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--backend", "sqlite", "--path", db, "--format", "line"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	db := newCatalogFile(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			"static overload",
			[]string{"resolve", "--class", "java.lang.String", "--member", "valueOf", "--arg", "int"},
			"java.lang.String.valueOf(int)\texact\nmember\tjava.lang.String.valueOf(int) java.lang.String\n",
		},
		{
			"generic receiver",
			[]string{"resolve", "--package", "com.example", "--receiver", "Box<String>", "--member", "get"},
			"Box<String>.get()\texact\nmember\tcom.example.Box.get() java.lang.String\n",
		},
		{
			"field",
			[]string{"resolve", "--field", "--class", "Integer", "--member", "MAX_VALUE"},
			"Integer.MAX_VALUE\texact\nfield\tjava.lang.Integer.MAX_VALUE\tint\n",
		},
		{
			"inner constructor",
			[]string{"resolve", "--ctor", "--enclosing", "com.example.Outer", "--class", "Inner", "--arg", "String"},
			"new Inner(String)\texact\nmember\tcom.example.Outer$Inner.Outer$Inner(java.lang.String)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, db, tt.args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExplainCommand(t *testing.T) {
	db := newCatalogFile(t)
	got, err := run(t, db, "explain", "--receiver", "com.example.A", "--member", "f")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := strings.Count(got, "candidate\t"); n != 3 {
		t.Errorf("%d candidates in\n%s", n, got)
	}
	if !strings.HasSuffix(got, "member\tcom.example.A.f() void\n") {
		t.Errorf("output = %q", got)
	}

	if _, err := run(t, db, "explain", "--field", "--class", "java.lang.Integer", "--member", "MAX_VALUE"); err == nil {
		t.Error("explain of a field succeeded")
	}
}

func TestBatchCommand(t *testing.T) {
	db := newCatalogFile(t)
	sites := filepath.Join(t.TempDir(), "sites.yaml")
	err := os.WriteFile(sites, []byte(`
package: com.example
imports: [java.util.List]
sites:
  - {receiver: "Box<String>", member: get}
  - {kind: field, class: [Integer], member: MAX_VALUE}
  - {kind: reference, class: [String], member: length}
  - {kind: constructor, class: [List], args: [int]}
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	got, err := run(t, db, "batch", "--audit", sites)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{
		"Box<String>.get()\texact\nmember\tcom.example.Box.get() java.lang.String\n",
		"Integer.MAX_VALUE\texact\nfield\tjava.lang.Integer.MAX_VALUE\tint\n",
		"String::length\texact\nmember\tjava.lang.String.length() int\nfunction\t(java.lang.String) -> int\n",
		"new List(int)\tunresolved\tno matching member",
		"methods\t1\n",
		"fields\t1\n",
		"method_references\t1\n",
		"unresolved\t1\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestSigCommand(t *testing.T) {
	tests := []struct {
		kind string
		sig  string
		want string
	}{
		{"class", "<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Comparable<TT;>;",
			"type-parameter\tT\tjava.lang.Object\nextends\tjava.lang.Object\nimplements\tjava.lang.Comparable<T>\n"},
		{"supertypes", "Ljava/lang/Number;Ljava/lang/Comparable<Ljava/lang/Integer;>;",
			"supertype\tjava.lang.Comparable<java.lang.Integer>\n"},
		{"method", "(I[Ljava/lang/String;)V",
			"parameter\t0\tint\nparameter\t1\tjava.lang.String[]\nreturn\tvoid\n"},
		{"field", "Ljava/util/List<+Ljava/lang/Number;>;",
			"type\tjava.util.List<? extends java.lang.Number>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var buf bytes.Buffer
			if err := runSig(&buf, tt.kind, tt.sig); err != nil {
				t.Fatalf("runSig: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}

	var buf bytes.Buffer
	if err := runSig(&buf, "method", "(Ljava/lang/String"); err == nil {
		t.Error("malformed signature accepted")
	}
	if err := runSig(&buf, "module", "V"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestDumpCommand(t *testing.T) {
	db := newCatalogFile(t)
	got, err := run(t, db, "dump", "com.example.StringBox")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "class\tcom.example.StringBox\tapp\tpublic\n" +
		"extends\tcom.example.Box<java.lang.String>\n" +
		"constructor\tStringBox\t-\t(java.lang.String)\tpublic\n" +
		"method\tlength\tint\t()\tpublic\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if _, err := run(t, db, "dump", "com.example.Missing"); err == nil {
		t.Error("dump of a missing class succeeded")
	}
}

func TestIndexCommandMissingPath(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jbind.db")
	if _, err := run(t, db, "index", filepath.Join(t.TempDir(), "missing.jar")); err == nil {
		t.Error("index of a missing path succeeded")
	}
}
