package signature

import (
	"testing"

	"github.com/dhamidi/jbind/typeinfo"
)

func TestTypeParameterRoundTrip(t *testing.T) {
	sigs := []string{
		"<T:Ljava/lang/Object;>Ljava/lang/Object;",
		"<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/util/AbstractMap<TK;TV;>;",
		"<E:Ljava/lang/Enum<TE;>;>Ljava/lang/Object;Ljava/lang/Comparable<TE;>;",
		"<T::Ljava/lang/Comparable<-TT;>;>Ljava/lang/Object;",
		"<A:Ljava/lang/Number;B:TA;C:[Ljava/util/List<+TB;>;>Ljava/lang/Object;",
	}
	for _, sig := range sigs {
		t.Run(sig, func(t *testing.T) {
			first, err := DecodeClassSignature(sig)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			enc, err := EncodeTypeParameters(first)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			second, err := DecodeTypeParameters(enc)
			if err != nil {
				t.Fatalf("re-decode %q: %v", enc, err)
			}
			if len(first) != len(second) {
				t.Fatalf("round trip changed count: %v -> %v", first, second)
			}
			for i := range first {
				if first[i].Symbol() != second[i].Symbol() || !typeinfo.Equal(first[i].Bound(), second[i].Bound()) {
					t.Errorf("formal %d: %v bound %v, after round trip %v bound %v",
						i, first[i], first[i].Bound(), second[i], second[i].Bound())
				}
			}
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		typ  typeinfo.TypeInfo
		want string
	}{
		{typeinfo.Int, "I"},
		{typeinfo.Boolean, "Z"},
		{typeinfo.Void, "V"},
		{typeinfo.NewQualified("java.util.Map$Entry"), "Ljava/util/Map$Entry;"},
		{typeinfo.NewArray(typeinfo.Long, 2), "[[J"},
		{typeinfo.NewVararg(typeinfo.NewQualified("java.lang.String")), "[Ljava/lang/String;"},
		{typeinfo.NewParameterized("java.util.List", typeinfo.NewWildcard(nil)), "Ljava/util/List<*>;"},
		{typeinfo.NewParameterized("java.util.List", typeinfo.NewWildcard(typeinfo.NewQualified("java.lang.Number"))), "Ljava/util/List<+Ljava/lang/Number;>;"},
		{typeinfo.NewFormal("T", nil), "TT;"},
	}
	for _, tt := range tests {
		got, err := Encode(tt.typ)
		if err != nil {
			t.Errorf("Encode(%v): %v", tt.typ, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Encode(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
	if _, err := Encode(typeinfo.Null); err == nil {
		t.Error("Encode(null) succeeded")
	}
}

func TestMethodRoundTrip(t *testing.T) {
	sig := "<T:Ljava/lang/Object;>(Ljava/util/Collection<+TT;>;[I)Ljava/util/List<TT;>;^Ljava/io/IOException;"
	ms, err := DecodeMethodSignature(sig, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := EncodeMethod(ms)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != sig {
		t.Errorf("EncodeMethod = %q, want %q", got, sig)
	}
}

func TestResolveGenerics(t *testing.T) {
	tests := []struct {
		name     string
		sig      string
		bindings typeinfo.Bindings
		want     string
	}{
		{
			name:     "class variable",
			sig:      "(TE;)Z",
			bindings: typeinfo.Bindings{"E": typeinfo.NewQualified("java.lang.String")},
			want:     "(Ljava/lang/String;)Z",
		},
		{
			name:     "bound method variable is dropped",
			sig:      "<T:Ljava/lang/Object;U:Ljava/lang/Object;>(TT;TU;)TT;",
			bindings: typeinfo.Bindings{"T": typeinfo.NewQualified("java.lang.Integer")},
			want:     "<U:Ljava/lang/Object;>(Ljava/lang/Integer;TU;)Ljava/lang/Integer;",
		},
		{
			name:     "nested",
			sig:      "(Ljava/util/Map<TK;[TV;>;)V",
			bindings: typeinfo.Bindings{"K": typeinfo.NewQualified("java.lang.String"), "V": typeinfo.Int},
			want:     "(Ljava/util/Map<Ljava/lang/String;[I>;)V",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveGenerics(tt.sig, tt.bindings)
			if err != nil {
				t.Fatalf("ResolveGenerics: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveGenerics = %q, want %q", got, tt.want)
			}
		})
	}
}
