package signature

import (
	"errors"
	"testing"

	"github.com/dhamidi/jbind/typeinfo"
)

func TestDecodeClassSignature(t *testing.T) {
	tests := []struct {
		name string
		sig  string
		want []string // symbol:bound
	}{
		{
			name: "no type parameters",
			sig:  "Ljava/lang/Object;Ljava/io/Serializable;",
			want: nil,
		},
		{
			name: "unbounded",
			sig:  "<T:Ljava/lang/Object;>Ljava/lang/Object;",
			want: []string{"T:java.lang.Object"},
		},
		{
			name: "map-like",
			sig:  "<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/util/AbstractMap<TK;TV;>;Ljava/util/Map<TK;TV;>;",
			want: []string{"K:java.lang.Object", "V:java.lang.Object"},
		},
		{
			name: "interface bound only",
			sig:  "<T::Ljava/lang/Comparable<TT;>;>Ljava/lang/Object;",
			want: []string{"T:java.lang.Comparable<T>"},
		},
		{
			name: "class bound wins over interfaces",
			sig:  "<N:Ljava/lang/Number;:Ljava/lang/Comparable<TN;>;>Ljava/lang/Object;",
			want: []string{"N:java.lang.Number"},
		},
		{
			name: "multiple interface bounds keep first",
			sig:  "<T::Ljava/lang/Runnable;:Ljava/io/Closeable;>Ljava/lang/Object;",
			want: []string{"T:java.lang.Runnable"},
		},
		{
			name: "empty class bound",
			sig:  "<T:>Ljava/lang/Object;",
			want: []string{"T:java.lang.Object"},
		},
		{
			name: "bound references earlier parameter",
			sig:  "<A:Ljava/lang/Object;B:TA;>Ljava/lang/Object;",
			want: []string{"A:java.lang.Object", "B:A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formals, err := DecodeClassSignature(tt.sig)
			if err != nil {
				t.Fatalf("DecodeClassSignature: %v", err)
			}
			var got []string
			for _, f := range formals {
				got = append(got, f.Symbol()+":"+f.Bound().Name())
			}
			if len(got) != len(tt.want) {
				t.Fatalf("formals = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("formal %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeClass(t *testing.T) {
	cs, err := DecodeClass("<E:Ljava/lang/Object;>Ljava/util/AbstractList<TE;>;Ljava/util/List<TE;>;Ljava/util/RandomAccess;")
	if err != nil {
		t.Fatalf("DecodeClass: %v", err)
	}
	if got := cs.Superclass.Name(); got != "java.util.AbstractList<E>" {
		t.Errorf("Superclass = %q", got)
	}
	if len(cs.Interfaces) != 2 {
		t.Fatalf("Interfaces = %v", cs.Interfaces)
	}
	if got := cs.Interfaces[1].Kind(); got != typeinfo.KindQualified {
		t.Errorf("RandomAccess kind = %v, want qualified", got)
	}
}

func TestDecodeParameterizedSupertypes(t *testing.T) {
	sig := "<T:Ljava/lang/Number;>Ljava/util/AbstractList<[TT;>;Ljava/lang/Comparable<Ljava/util/List<TT;>;>;Ljava/io/Serializable;"

	t.Run("own formals", func(t *testing.T) {
		got, err := DecodeParameterizedSupertypes(sig, nil)
		if err != nil {
			t.Fatalf("DecodeParameterizedSupertypes: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d supertypes, want 2: %v", len(got), got)
		}
		p := got[0].(*typeinfo.Parameterized)
		arr, ok := p.TypeArguments()[0].(*typeinfo.Array)
		if !ok {
			t.Fatalf("array position decoded as %T", p.TypeArguments()[0])
		}
		f := arr.Element().(*typeinfo.FormalTypeParameter)
		if f.Symbol() != "T" || f.Bound().Name() != "java.lang.Number" {
			t.Errorf("element = %v bound %v", f, f.Bound())
		}
		if got[1].Name() != "java.lang.Comparable<java.util.List<T>>" {
			t.Errorf("second supertype = %q", got[1].Name())
		}
	})

	t.Run("known formals replace", func(t *testing.T) {
		known := []*typeinfo.FormalTypeParameter{typeinfo.NewFormal("T", typeinfo.NewQualified("java.lang.Integer"))}
		got, err := DecodeParameterizedSupertypes(sig, known)
		if err != nil {
			t.Fatalf("DecodeParameterizedSupertypes: %v", err)
		}
		arr := got[0].(*typeinfo.Parameterized).TypeArguments()[0].(*typeinfo.Array)
		if b := arr.Element().(*typeinfo.FormalTypeParameter).Bound().Name(); b != "java.lang.Integer" {
			t.Errorf("bound = %q, want java.lang.Integer", b)
		}
	})
}

func TestDecodeMethodSignature(t *testing.T) {
	classFormals := []*typeinfo.FormalTypeParameter{typeinfo.NewFormal("E", nil)}
	tests := []struct {
		name     string
		sig      string
		args     []string
		ret      string
		typarams []string
		throws   []string
	}{
		{
			name: "descriptor",
			sig:  "(I[Ljava/lang/String;J)V",
			args: []string{"int", "java.lang.String[]", "long"},
			ret:  "void",
		},
		{
			name: "class formal",
			sig:  "(TE;)Z",
			args: []string{"E"},
			ret:  "boolean",
		},
		{
			name:     "generic method",
			sig:      "<T:Ljava/lang/Object;>([TT;)[TT;",
			args:     []string{"T[]"},
			ret:      "T[]",
			typarams: []string{"T"},
		},
		{
			name: "wildcards",
			sig:  "(Ljava/util/Collection<+TE;>;Ljava/util/List<*>;Ljava/util/Comparator<-TE;>;)V",
			args: []string{"java.util.Collection<? extends E>", "java.util.List<?>", "java.util.Comparator<?>"},
			ret:  "void",
		},
		{
			name:   "throws",
			sig:    "<X:Ljava/lang/Throwable;>(Ljava/util/function/Supplier<+TX;>;)TE;^TX;^Ljava/io/IOException;",
			args:   []string{"java.util.function.Supplier<? extends X>"},
			ret:    "E",
			throws: []string{"X", "java.io.IOException"},

			typarams: []string{"X"},
		},
		{
			name: "inner class",
			sig:  "()Ljava/util/Map<TE;TE;>.Entry<TE;Ljava/lang/String;>;",
			ret:  "java.util.Map$Entry<E, java.lang.String>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, err := DecodeMethodSignature(tt.sig, classFormals)
			if err != nil {
				t.Fatalf("DecodeMethodSignature: %v", err)
			}
			assertNames(t, "args", ms.Arguments, tt.args)
			assertNames(t, "throws", ms.Throws, tt.throws)
			if ms.Return.Name() != tt.ret {
				t.Errorf("return = %q, want %q", ms.Return.Name(), tt.ret)
			}
			var tps []string
			for _, f := range ms.TypeParameters {
				tps = append(tps, f.Symbol())
			}
			if len(tps) != len(tt.typarams) {
				t.Errorf("type parameters = %v, want %v", tps, tt.typarams)
			}
		})
	}
}

func TestMethodFormalShadowsClassFormal(t *testing.T) {
	classFormals := []*typeinfo.FormalTypeParameter{typeinfo.NewFormal("T", typeinfo.NewQualified("java.lang.CharSequence"))}
	args, tps, err := DecodeMethodArguments("<T:Ljava/lang/Number;>(TT;)V", classFormals)
	if err != nil {
		t.Fatalf("DecodeMethodArguments: %v", err)
	}
	if len(tps) != 1 {
		t.Fatalf("type parameters = %v", tps)
	}
	if b := args[0].(*typeinfo.FormalTypeParameter).Bound().Name(); b != "java.lang.Number" {
		t.Errorf("argument bound = %q, want java.lang.Number", b)
	}
}

func TestDecodeFieldSignature(t *testing.T) {
	got, err := DecodeFieldSignature("Ljava/util/Map<Ljava/lang/String;[[I>;", nil)
	if err != nil {
		t.Fatalf("DecodeFieldSignature: %v", err)
	}
	if got.Name() != "java.util.Map<java.lang.String, int[][]>" {
		t.Errorf("field type = %q", got.Name())
	}
	unbound, err := DecodeFieldSignature("TQ;", nil)
	if err != nil {
		t.Fatalf("DecodeFieldSignature: %v", err)
	}
	if f := unbound.(*typeinfo.FormalTypeParameter); !f.HasDefaultBound() {
		t.Errorf("unknown variable bound = %v, want Object", f.Bound())
	}
}

func TestMalformed(t *testing.T) {
	for _, sig := range []string{
		"",
		"<T:Ljava/lang/Object;",
		"<>Ljava/lang/Object;",
		"Ljava/util/List<Ljava/lang/String;",
		"Ljava/util/List<Ljava/lang/String;>",
		"Ljava/lang/Object",
		"Ljava/lang/Object;X",
		"Qfoo;",
		"Ljava/util/List<>;",
	} {
		if _, err := DecodeClassSignature(sig); !errors.Is(err, ErrMalformedSignature) {
			t.Errorf("DecodeClassSignature(%q) error = %v, want ErrMalformedSignature", sig, err)
		}
	}
	for _, sig := range []string{"", "I)V", "(I", "(I)", "(I)VV", "(TT)V", "(I)V^"} {
		if _, err := DecodeMethodSignature(sig, nil); !errors.Is(err, ErrMalformedSignature) {
			t.Errorf("DecodeMethodSignature(%q) error = %v, want ErrMalformedSignature", sig, err)
		}
	}
	if _, err := DecodeFieldSignature("II", nil); !errors.Is(err, ErrMalformedSignature) {
		t.Errorf("DecodeFieldSignature(II) error = %v", err)
	}
}

func assertNames(t *testing.T, what string, got []typeinfo.TypeInfo, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", what, got, want)
	}
	for i := range got {
		if got[i].Name() != want[i] {
			t.Errorf("%s[%d] = %q, want %q", what, i, got[i].Name(), want[i])
		}
	}
}
