package classfile

import (
	"bytes"
	"strings"
	"testing"
)

func buildSample() []byte {
	return NewBuilder("com/example/Box", "java/lang/Object", AccPublic|AccSuper).
		Interface("java/lang/Comparable").
		Interface("java/io/Serializable").
		Signature("<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Comparable<Lcom/example/Box<TT;>;>;Ljava/io/Serializable;").
		Constant(ConstantLong).
		Field(AccPrivate, "value", "Ljava/lang/Object;", "TT;").
		Field(AccPublic|AccStatic|AccFinal, "COUNT", "I", "").
		Method(AccPublic, "<init>", "(Ljava/lang/Object;)V", "(TT;)V").
		Method(AccPublic, "get", "()Ljava/lang/Object;", "()TT;").
		Method(AccPublic|AccVarargs, "put", "([Ljava/lang/Object;)V", "([TT;)V", "java/io/IOException", "java/lang/InterruptedException").
		Method(AccStatic, "<clinit>", "()V", "").
		InnerClass("com/example/Box$Entry", "com/example/Box", "Entry", AccPublic).
		InnerClass("com/example/Box$Key", "com/example/Box", "Key", AccPublic|AccStatic).
		InnerClass("com/example/Box$1", "", "", 0).
		Bytes()
}

func TestParseClassFile(t *testing.T) {
	cf, err := Parse(bytes.NewReader(buildSample()))
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}

	t.Run("class name", func(t *testing.T) {
		expected := "com/example/Box"
		if got := cf.ClassName(); got != expected {
			t.Errorf("ClassName() = %q, want %q", got, expected)
		}
	})

	t.Run("super class", func(t *testing.T) {
		expected := "java/lang/Object"
		if got := cf.SuperClassName(); got != expected {
			t.Errorf("SuperClassName() = %q, want %q", got, expected)
		}
	})

	t.Run("interfaces", func(t *testing.T) {
		got := cf.InterfaceNames()
		if len(got) != 2 || got[0] != "java/lang/Comparable" || got[1] != "java/io/Serializable" {
			t.Errorf("InterfaceNames() = %v", got)
		}
	})

	t.Run("signature", func(t *testing.T) {
		if !strings.HasPrefix(cf.Signature, "<T:") {
			t.Errorf("Signature = %q", cf.Signature)
		}
	})

	t.Run("access flags", func(t *testing.T) {
		if !cf.AccessFlags.IsPublic() {
			t.Error("Expected class to be public")
		}
		if cf.IsInterface() || cf.IsEnum() || cf.IsAnnotation() {
			t.Error("Expected a plain class")
		}
	})

	t.Run("fields", func(t *testing.T) {
		if len(cf.Fields) != 2 {
			t.Fatalf("Expected 2 fields, got %d", len(cf.Fields))
		}
		value := cf.GetField("value")
		if value == nil {
			t.Fatal("Expected to find value field")
		}
		if value.Descriptor != "Ljava/lang/Object;" || value.Signature != "TT;" {
			t.Errorf("value = %q %q", value.Descriptor, value.Signature)
		}
		count := cf.GetField("COUNT")
		if count == nil || !count.AccessFlags.IsStatic() || count.Signature != "" {
			t.Errorf("COUNT = %+v", count)
		}
	})

	t.Run("methods", func(t *testing.T) {
		ctors := cf.GetMethods("<init>")
		if len(ctors) != 1 || !ctors[0].IsConstructor() {
			t.Fatalf("constructors = %v", ctors)
		}
		put := cf.GetMethods("put")
		if len(put) != 1 {
			t.Fatalf("put = %v", put)
		}
		if !put[0].AccessFlags.IsVarargs() {
			t.Error("put should be varargs")
		}
		if len(put[0].Exceptions) != 2 || put[0].Exceptions[1] != "java/lang/InterruptedException" {
			t.Errorf("put exceptions = %v", put[0].Exceptions)
		}
		clinit := cf.GetMethods("<clinit>")
		if len(clinit) != 1 || !clinit[0].IsStaticInitializer() {
			t.Errorf("clinit = %v", clinit)
		}
	})

	t.Run("inner classes", func(t *testing.T) {
		if len(cf.InnerClasses) != 3 {
			t.Fatalf("InnerClasses = %v", cf.InnerClasses)
		}
		members := cf.MemberClasses()
		if len(members) != 2 || members[0] != "com/example/Box$Entry" {
			t.Errorf("MemberClasses() = %v", members)
		}
		if _, ok := cf.OwnInnerClassEntry(); ok {
			t.Error("top-level class reports an own inner class entry")
		}
		if !cf.InnerClasses[1].AccessFlags.IsStatic() {
			t.Error("Key should be static")
		}
	})
}

func TestParseNestedClass(t *testing.T) {
	data := NewBuilder("com/example/Box$Entry", "java/lang/Object", AccPublic).
		InnerClass("com/example/Box$Entry", "com/example/Box", "Entry", AccPublic).
		Method(AccPublic, "<init>", "(Lcom/example/Box;I)V", "").
		Bytes()
	cf, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	own, ok := cf.OwnInnerClassEntry()
	if !ok {
		t.Fatal("nested class has no own inner class entry")
	}
	if own.Outer != "com/example/Box" || own.SimpleName != "Entry" || own.AccessFlags.IsStatic() {
		t.Errorf("own entry = %+v", own)
	}
}

func TestParseErrors(t *testing.T) {
	valid := buildSample()
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "failed to read magic"},
		{"bad magic", []byte{0xCA, 0xFE, 0xBA, 0xBF, 0, 0, 0, 52}, "invalid magic number"},
		{"truncated", valid[:len(valid)/2], "failed to read"},
		{"unknown tag", []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 52, 0, 2, 99}, "unknown constant pool tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestModifiedUtf8(t *testing.T) {
	for _, s := range []string{"plain", "café", "中文", "nul\x00byte", "emoji \U0001F600"} {
		if got := decodeModifiedUtf8(encodeModifiedUtf8(s)); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
}

func TestNameConversion(t *testing.T) {
	if got := InternalToSourceName("java/util/Map$Entry"); got != "java.util.Map$Entry" {
		t.Errorf("InternalToSourceName = %q", got)
	}
	if got := SourceToInternalName("java.lang.String"); got != "java/lang/String" {
		t.Errorf("SourceToInternalName = %q", got)
	}
}
