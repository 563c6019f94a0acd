package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jbind/catalog"
)

func newIndexCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <jar|dir|class>...",
		Short: "Read class files into the catalog",
		Long: `Read class files into the catalog. Every jar becomes its own unit, named
after the jar; loose class files take the name of the directory given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := g.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := catalog.NewLoader(store, g.cfg.Workers).Load(ctx, args...)
			fmt.Fprintf(cmd.OutOrStdout(), "units\t%d\nclasses\t%d\nskipped\t%d\nfailed\t%d\n",
				stats.Units, stats.Classes, stats.Skipped, stats.Failed)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			return nil
		},
	}
	return cmd
}
