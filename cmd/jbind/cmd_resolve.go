package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jbind/format"
	"github.com/dhamidi/jbind/resolve"
)

// siteFlags are the flags describing a single call site.
type siteFlags struct {
	unit unitSpec
	site siteSpec

	constructor bool
	field       bool
	reference   bool
}

func (f *siteFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.unit.Package, "package", "", "package of the calling compilation unit")
	flags.StringArrayVar(&f.unit.Imports, "import", nil, "import declaration of the calling unit (repeatable)")
	flags.StringArrayVar(&f.unit.Enclosing, "enclosing", nil, "enclosing class of the call site, innermost first (repeatable)")

	flags.StringArrayVar(&f.site.Class, "class", nil, "class searched for the member (repeatable)")
	flags.StringVarP(&f.site.Receiver, "receiver", "r", "", "static type of the receiver expression")
	flags.StringVarP(&f.site.Member, "member", "m", "", "method or field name; \"new\" for constructor references")
	flags.StringArrayVarP(&f.site.Args, "arg", "a", nil, "argument type in source form (repeatable)")
	flags.BoolVar(&f.site.Super, "super", false, "invoke through super")
	flags.BoolVar(&f.site.Bound, "bound", false, "method reference on an expression rather than a type")

	flags.BoolVar(&f.constructor, "ctor", false, "resolve a constructor invocation")
	flags.BoolVar(&f.field, "field", false, "resolve a field access")
	flags.BoolVar(&f.reference, "ref", false, "resolve a method reference")
	cmd.MarkFlagsMutuallyExclusive("ctor", "field", "ref")
}

func (f *siteFlags) spec() *siteSpec {
	s := f.site
	switch {
	case f.constructor:
		s.Kind = kindConstructor
	case f.field:
		s.Kind = kindField
	case f.reference:
		s.Kind = kindReference
	default:
		s.Kind = kindMethod
	}
	return &s
}

func newResolveCmd(g *globals) *cobra.Command {
	f := &siteFlags{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one call site to the member it invokes",
		Example: `  jbind resolve --class java.lang.String --member valueOf --arg int
  jbind resolve --receiver 'java.util.Map<String, Integer>' --member get --arg String
  jbind resolve --ctor --class java.util.ArrayList --arg int`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			enc, err := g.encoder(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cat, closeCatalog, err := g.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeCatalog()

			r, err := f.unit.resolver(cat, g.cfg.Catalog.Units)
			if err != nil {
				return err
			}
			spec := f.spec()
			site, err := spec.site(ctx, r)
			if err != nil {
				return err
			}

			session := resolve.NewSession(cat, g.cfg.Workers, g.cfg.EngineOptions()...)
			out := session.Resolve(ctx, site)
			return enc.EncodeResolution(format.FromOutcome(spec.label(), out))
		},
	}
	f.register(cmd)
	return cmd
}

func newExplainCmd(g *globals) *cobra.Command {
	f := &siteFlags{}
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show every candidate considered for a call site and how it scored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if f.field || f.reference {
				return fmt.Errorf("explain supports method and constructor invocations only")
			}
			enc, err := g.encoder(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cat, closeCatalog, err := g.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeCatalog()

			r, err := f.unit.resolver(cat, g.cfg.Catalog.Units)
			if err != nil {
				return err
			}
			spec := f.spec()
			site, err := spec.site(ctx, r)
			if err != nil {
				return err
			}

			engine := resolve.NewEngine(cat, g.cfg.EngineOptions()...)
			return enc.EncodeExplanation(spec.label(), engine.Explain(ctx, site.Request))
		},
	}
	f.register(cmd)
	return cmd
}
