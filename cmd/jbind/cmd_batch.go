package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/jbind/format"
	"github.com/dhamidi/jbind/resolve"
)

func newBatchCmd(g *globals) *cobra.Command {
	var audit bool

	cmd := &cobra.Command{
		Use:   "batch <sites.yaml>",
		Short: "Resolve every call site listed in a file",
		Long: `Resolve every call site listed in a YAML file. The file describes one
compilation unit and its sites:

  package: com.example
  imports: [java.util.List, static java.util.Collections.*]
  enclosing: [com.example.Main]
  sites:
    - {member: println, receiver: java.io.PrintStream, args: [String]}
    - {kind: constructor, class: [ArrayList], args: [int]}
    - {kind: field, class: [Integer], member: MAX_VALUE}
    - {kind: reference, class: [String], member: length}

Sites are resolved in parallel, one line or JSON document per site, in file
order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read sites: %w", err)
			}
			var unit unitSpec
			if err := yaml.Unmarshal(data, &unit); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
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

			r, err := unit.resolver(cat, g.cfg.Catalog.Units)
			if err != nil {
				return err
			}
			sites := make([]*resolve.Site, len(unit.Sites))
			for i := range unit.Sites {
				site, err := unit.Sites[i].site(ctx, r)
				if err != nil {
					return err
				}
				sites[i] = site
			}

			session := resolve.NewSession(cat, g.cfg.Workers, g.cfg.EngineOptions()...)
			log.Infof("session %s: resolving %d sites", session.ID, len(sites))
			outcomes, err := session.ResolveAll(ctx, sites)
			if err != nil {
				return err
			}
			for i, out := range outcomes {
				if err := enc.EncodeResolution(format.FromOutcome(unit.Sites[i].label(), out)); err != nil {
					return err
				}
			}
			if audit {
				return enc.EncodeAudit(session.Audit())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&audit, "audit", false, "print resolution counts after the sites")

	return cmd
}
