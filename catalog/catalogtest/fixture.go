// Package catalogtest provides a small class library for tests and a
// conformance check every catalog store must pass.
package catalogtest

import (
	"context"
	"fmt"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/classfile"
	"github.com/dhamidi/jbind/java"
)

const (
	RuntimeUnit = "rt"
	AppUnit     = "app"
)

const (
	pub      = classfile.AccPublic
	static   = classfile.AccStatic
	abstract = classfile.AccAbstract
	iface    = classfile.AccInterface | classfile.AccAbstract
	varargs  = classfile.AccVarargs
	final    = classfile.AccFinal
)

type Entry struct {
	Unit        string
	Declaration *java.Declaration
}

type classBuilder struct {
	decl *java.Declaration
}

func class(name string, flags classfile.AccessFlags, super string, interfaces ...string) *classBuilder {
	return &classBuilder{decl: &java.Declaration{Class: java.RawClass{
		Name:       name,
		Flags:      flags,
		SuperClass: super,
		Interfaces: interfaces,
	}}}
}

func (b *classBuilder) sig(s string) *classBuilder {
	b.decl.Class.Signature = s
	return b
}

func (b *classBuilder) nested(outer string, flags classfile.AccessFlags) *classBuilder {
	b.decl.Class.Nested = true
	b.decl.Class.OuterClass = outer
	b.decl.Class.InnerFlags = flags
	return b
}

func (b *classBuilder) inner(names ...string) *classBuilder {
	b.decl.Class.InnerClasses = append(b.decl.Class.InnerClasses, names...)
	return b
}

func (b *classBuilder) method(flags classfile.AccessFlags, name, desc, sig string) *classBuilder {
	b.decl.Methods = append(b.decl.Methods, java.RawMethod{Name: name, Descriptor: desc, Signature: sig, Flags: flags})
	return b
}

func (b *classBuilder) field(flags classfile.AccessFlags, name, desc, sig string) *classBuilder {
	b.decl.Fields = append(b.decl.Fields, java.RawField{Name: name, Descriptor: desc, Signature: sig, Flags: flags})
	return b
}

// Library returns fresh declarations: a slice of java.lang and java.util
// in the runtime unit and a few com.example classes in the app unit.
func Library() []Entry {
	rt := []*classBuilder{
		class("java.lang.Object", pub, "").
			method(pub, "<init>", "()V", "").
			method(pub, "equals", "(Ljava/lang/Object;)Z", "").
			method(pub, "hashCode", "()I", "").
			method(pub, "toString", "()Ljava/lang/String;", ""),
		class("java.lang.CharSequence", pub|iface, "java.lang.Object").
			method(pub|abstract, "length", "()I", "").
			method(pub|abstract, "charAt", "(I)C", ""),
		class("java.lang.Comparable", pub|iface, "java.lang.Object").
			sig("<T:Ljava/lang/Object;>Ljava/lang/Object;").
			method(pub|abstract, "compareTo", "(Ljava/lang/Object;)I", "(TT;)I"),
		class("java.lang.String", pub|final, "java.lang.Object", "java.lang.CharSequence", "java.lang.Comparable").
			sig("Ljava/lang/Object;Ljava/lang/CharSequence;Ljava/lang/Comparable<Ljava/lang/String;>;").
			field(pub|static|final, "CASE_INSENSITIVE_ORDER", "Ljava/util/Comparator;", "Ljava/util/Comparator<Ljava/lang/String;>;").
			method(pub, "<init>", "()V", "").
			method(pub, "<init>", "(Ljava/lang/String;)V", "").
			method(pub, "length", "()I", "").
			method(pub, "charAt", "(I)C", "").
			method(pub, "compareTo", "(Ljava/lang/String;)I", "").
			method(pub|classfile.AccBridge|classfile.AccSynthetic, "compareTo", "(Ljava/lang/Object;)I", "").
			method(pub|static, "valueOf", "(Ljava/lang/Object;)Ljava/lang/String;", "").
			method(pub|static, "valueOf", "(Z)Ljava/lang/String;", "").
			method(pub|static, "valueOf", "(C)Ljava/lang/String;", "").
			method(pub|static, "valueOf", "(I)Ljava/lang/String;", "").
			method(pub|static, "valueOf", "(J)Ljava/lang/String;", "").
			method(pub|static, "valueOf", "(D)Ljava/lang/String;", "").
			method(pub|static|varargs, "format", "(Ljava/lang/String;[Ljava/lang/Object;)Ljava/lang/String;", "").
			method(pub|static|varargs, "join", "(Ljava/lang/CharSequence;[Ljava/lang/CharSequence;)Ljava/lang/String;", ""),
		class("java.lang.Number", pub|abstract, "java.lang.Object").
			method(pub, "<init>", "()V", "").
			method(pub|abstract, "intValue", "()I", ""),
		class("java.lang.Integer", pub|final, "java.lang.Number", "java.lang.Comparable").
			sig("Ljava/lang/Number;Ljava/lang/Comparable<Ljava/lang/Integer;>;").
			field(pub|static|final, "MAX_VALUE", "I", "").
			method(pub, "<init>", "(I)V", "").
			method(pub, "intValue", "()I", "").
			method(pub|static, "valueOf", "(I)Ljava/lang/Integer;", "").
			method(pub|static, "valueOf", "(Ljava/lang/String;)Ljava/lang/Integer;", "").
			method(pub|static, "toString", "(I)Ljava/lang/String;", ""),
		class("java.lang.Runnable", pub|iface, "java.lang.Object").
			method(pub|abstract, "run", "()V", ""),
		class("java.lang.Iterable", pub|iface, "java.lang.Object").
			sig("<T:Ljava/lang/Object;>Ljava/lang/Object;"),
		class("java.util.Collection", pub|iface, "java.lang.Object", "java.lang.Iterable").
			sig("<E:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Iterable<TE;>;").
			method(pub|abstract, "size", "()I", "").
			method(pub|abstract, "add", "(Ljava/lang/Object;)Z", "(TE;)Z"),
		class("java.util.List", pub|iface, "java.lang.Object", "java.util.Collection").
			sig("<E:Ljava/lang/Object;>Ljava/lang/Object;Ljava/util/Collection<TE;>;").
			method(pub|abstract, "get", "(I)Ljava/lang/Object;", "(I)TE;").
			method(pub|abstract, "add", "(Ljava/lang/Object;)Z", "(TE;)Z").
			method(pub|abstract, "add", "(ILjava/lang/Object;)V", "(ITE;)V").
			method(pub|static|varargs, "of", "([Ljava/lang/Object;)Ljava/util/List;", "<E:Ljava/lang/Object;>([TE;)Ljava/util/List<TE;>;"),
		class("java.util.ArrayList", pub, "java.lang.Object", "java.util.List").
			sig("<E:Ljava/lang/Object;>Ljava/lang/Object;Ljava/util/List<TE;>;").
			method(pub, "<init>", "()V", "").
			method(pub, "<init>", "(I)V", "").
			method(pub, "<init>", "(Ljava/util/Collection;)V", "(Ljava/util/Collection<+TE;>;)V").
			method(pub, "get", "(I)Ljava/lang/Object;", "(I)TE;").
			method(pub, "add", "(Ljava/lang/Object;)Z", "(TE;)Z").
			method(pub, "size", "()I", ""),
		class("java.util.Map", pub|iface, "java.lang.Object").
			sig("<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/lang/Object;").
			inner("java.util.Map$Entry").
			method(pub|abstract, "get", "(Ljava/lang/Object;)Ljava/lang/Object;", "(Ljava/lang/Object;)TV;").
			method(pub|abstract, "put", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;", "(TK;TV;)TV;"),
		class("java.util.Map$Entry", pub|iface, "java.lang.Object").
			sig("<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/lang/Object;").
			nested("java.util.Map", pub|static|iface).
			method(pub|abstract, "getKey", "()Ljava/lang/Object;", "()TK;"),
		class("java.util.function.Function", pub|iface, "java.lang.Object").
			sig("<T:Ljava/lang/Object;R:Ljava/lang/Object;>Ljava/lang/Object;").
			method(pub|abstract, "apply", "(Ljava/lang/Object;)Ljava/lang/Object;", "(TT;)TR;"),
		class("java.util.concurrent.Executor", pub|iface, "java.lang.Object").
			method(pub|abstract, "execute", "(Ljava/lang/Runnable;)V", ""),
	}
	app := []*classBuilder{
		class("com.example.Box", pub, "java.lang.Object").
			sig("<T:Ljava/lang/Object;>Ljava/lang/Object;").
			field(pub, "value", "Ljava/lang/Object;", "TT;").
			method(pub, "<init>", "(Ljava/lang/Object;)V", "(TT;)V").
			method(pub, "get", "()Ljava/lang/Object;", "()TT;").
			method(pub, "set", "(Ljava/lang/Object;)V", "(TT;)V").
			method(pub, "map", "(Ljava/util/function/Function;)Lcom/example/Box;", "<R:Ljava/lang/Object;>(Ljava/util/function/Function<-TT;+TR;>;)Lcom/example/Box<TR;>;"),
		class("com.example.StringBox", pub, "com.example.Box").
			sig("Lcom/example/Box<Ljava/lang/String;>;").
			method(pub, "<init>", "(Ljava/lang/String;)V", "").
			method(pub, "length", "()I", ""),
		class("com.example.C", pub, "java.lang.Object").
			method(pub, "<init>", "()V", "").
			method(pub, "f", "()V", ""),
		class("com.example.B", pub, "com.example.C").
			method(pub, "<init>", "()V", "").
			method(pub, "f", "()V", ""),
		class("com.example.A", pub, "com.example.B").
			method(pub, "<init>", "()V", "").
			method(pub, "f", "()V", ""),
		class("com.example.Printer", pub, "java.lang.Object").
			method(pub, "<init>", "()V", "").
			method(pub, "print", "(Ljava/lang/String;Ljava/lang/String;)V", "").
			method(pub|varargs, "print", "([Ljava/lang/String;)V", "").
			method(pub, "show", "(J)V", "").
			method(pub, "show", "(Ljava/lang/Integer;)V", "").
			method(pub, "pick", "(Ljava/lang/Object;Ljava/lang/String;)V", "").
			method(pub, "pick", "(Ljava/lang/String;Ljava/lang/Object;)V", "").
			method(pub, "take", "(Ljava/lang/Object;)V", "").
			method(pub, "take", "(Ljava/lang/CharSequence;)V", "").
			method(pub, "submit", "(Ljava/lang/Runnable;)V", "").
			method(pub, "convert", "(Ljava/util/function/Function;)V", "(Ljava/util/function/Function<Ljava/lang/String;Ljava/lang/Integer;>;)V"),
		class("com.example.Outer", pub, "java.lang.Object").
			inner("com.example.Outer$Inner", "com.example.Outer$Nested").
			method(pub, "<init>", "()V", ""),
		class("com.example.Outer$Inner", pub, "java.lang.Object").
			nested("com.example.Outer", pub).
			method(pub, "<init>", "(Lcom/example/Outer;Ljava/lang/String;)V", ""),
		class("com.example.Outer$Nested", pub, "java.lang.Object").
			nested("com.example.Outer", pub|static).
			method(pub, "<init>", "(I)V", ""),
		class("com.example.Shape", pub|abstract, "java.lang.Object").
			method(pub, "<init>", "()V", "").
			method(pub|abstract, "area", "()D", ""),
		class("com.example.Square", pub, "com.example.Shape").
			method(pub, "<init>", "(D)V", "").
			method(pub, "area", "()D", ""),
	}

	var out []Entry
	for _, b := range rt {
		b.decl.Class.Unit = RuntimeUnit
		out = append(out, Entry{Unit: RuntimeUnit, Declaration: b.decl})
	}
	for _, b := range app {
		b.decl.Class.Unit = AppUnit
		out = append(out, Entry{Unit: AppUnit, Declaration: b.decl})
	}
	return out
}

// Fill adds Library to sink and returns the ids by class name.
func Fill(ctx context.Context, sink catalog.Sink) (map[string]java.ClassID, error) {
	ids := make(map[string]java.ClassID)
	for _, e := range Library() {
		id, err := sink.Add(ctx, e.Unit, e.Declaration)
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", e.Declaration.Class.Name, err)
		}
		ids[e.Declaration.Class.Name] = id
	}
	return ids, nil
}
