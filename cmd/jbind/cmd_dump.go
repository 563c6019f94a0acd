package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jbind/format"
	"github.com/dhamidi/jbind/java"
)

func newDumpCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <class>...",
		Short: "Dump catalog declarations of classes, by binary or simple name",
		Args:  cobra.MinimumNArgs(1),
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

			for _, name := range args {
				classes, err := cat.LookupClasses(ctx, g.cfg.Catalog.Units, name)
				if err != nil {
					return fmt.Errorf("look up %s: %w", name, err)
				}
				if len(classes) == 0 {
					return fmt.Errorf("class not found: %s", name)
				}
				for _, class := range classes {
					ids := []java.ClassID{class.ID}
					methods, err := cat.LookupMethods(ctx, ids, "")
					if err != nil {
						return fmt.Errorf("methods of %s: %w", class.Name, err)
					}
					fields, err := cat.LookupFields(ctx, ids, "")
					if err != nil {
						return fmt.Errorf("fields of %s: %w", class.Name, err)
					}
					decl := &format.Declaration{Class: class, Methods: methods, Fields: fields}
					if err := enc.EncodeDeclaration(decl); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	return cmd
}
