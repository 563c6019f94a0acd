package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jbind/signature"
	"github.com/dhamidi/jbind/typeinfo"
)

func newSigCmd(g *globals) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "sig <signature>",
		Short: "Decode a class-file generic signature",
		Example: `  jbind sig --kind class '<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Comparable<TT;>;'
  jbind sig --kind method '<R:Ljava/lang/Object;>(Ljava/util/function/Function<-TT;+TR;>;)LBox<TR;>;'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSig(cmd.OutOrStdout(), kind, args[0])
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "method", "signature kind (class, supertypes, method, field)")

	return cmd
}

func runSig(w io.Writer, kind, sig string) error {
	switch kind {
	case "class":
		cs, err := signature.DecodeClass(sig)
		if err != nil {
			return err
		}
		writeFormals(w, cs.TypeParameters)
		if cs.Superclass != nil {
			fmt.Fprintf(w, "extends\t%s\n", cs.Superclass.Name())
		}
		for _, iface := range cs.Interfaces {
			fmt.Fprintf(w, "implements\t%s\n", iface.Name())
		}
	case "supertypes":
		supers, err := signature.DecodeParameterizedSupertypes(sig, nil)
		if err != nil {
			return err
		}
		for _, t := range supers {
			fmt.Fprintf(w, "supertype\t%s\n", t.Name())
		}
	case "method":
		ms, err := signature.DecodeMethodSignature(sig, nil)
		if err != nil {
			return err
		}
		writeFormals(w, ms.TypeParameters)
		for i, a := range ms.Arguments {
			fmt.Fprintf(w, "parameter\t%d\t%s\n", i, a.Name())
		}
		fmt.Fprintf(w, "return\t%s\n", ms.Return.Name())
		for _, t := range ms.Throws {
			fmt.Fprintf(w, "throws\t%s\n", t.Name())
		}
	case "field":
		t, err := signature.DecodeFieldSignature(sig, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "type\t%s\n", t.Name())
	default:
		return fmt.Errorf("unknown signature kind: %s (expected class, supertypes, method, or field)", kind)
	}
	return nil
}

func writeFormals(w io.Writer, formals []*typeinfo.FormalTypeParameter) {
	for _, f := range formals {
		fmt.Fprintf(w, "type-parameter\t%s\t%s\n", f.Symbol(), f.Bound().Name())
	}
}
