package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/config"
	"github.com/dhamidi/jbind/format"
)

var log = commonlog.GetLogger("jbind")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globals holds the persistent flags and the configuration they select.
type globals struct {
	configPath string
	verbose    int
	format     string
	backend    string
	path       string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:          "jbind",
		Short:        "Resolve Java call sites against compiled class libraries",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "configuration file (YAML)")
	flags.CountVarP(&g.verbose, "verbose", "v", "log more (repeat for debug)")
	flags.StringVarP(&g.format, "format", "f", "", "output format (json, line); line on a terminal, json otherwise")
	flags.StringVar(&g.backend, "backend", "", "catalog backend (memory, sqlite, badger)")
	flags.StringVar(&g.path, "path", "", "catalog database file or directory")

	rootCmd.AddCommand(newIndexCmd(g))
	rootCmd.AddCommand(newResolveCmd(g))
	rootCmd.AddCommand(newExplainCmd(g))
	rootCmd.AddCommand(newBatchCmd(g))
	rootCmd.AddCommand(newSigCmd(g))
	rootCmd.AddCommand(newDumpCmd(g))

	return rootCmd
}

func (g *globals) setup() error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.backend != "" {
		cfg.Catalog.Backend = g.backend
	}
	if g.path != "" {
		cfg.Catalog.Path = g.path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg

	verbosity := max(cfg.Log.Verbosity, g.verbose)
	commonlog.Configure(verbosity, nil)
	return nil
}

// encoder returns the encoder for the selected output format.
func (g *globals) encoder(w io.Writer) (format.Encoder, error) {
	name := g.format
	if name == "" {
		name = "json"
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			name = "line"
		}
	}
	enc, ok := format.New(name, w)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (expected json or line)", name)
	}
	return enc, nil
}

// openStore opens the configured catalog for writing.
func (g *globals) openStore(ctx context.Context) (catalog.Store, error) {
	store, err := g.cfg.OpenStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

// openCatalog opens the configured catalog for lookups, behind the
// configured caches. The returned function closes both.
func (g *globals) openCatalog(ctx context.Context) (catalog.Catalog, func(), error) {
	store, err := g.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	cat, release, err := g.cfg.Lookup(store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return cat, func() {
		release()
		if err := store.Close(); err != nil {
			log.Warningf("failed to close catalog: %s", err)
		}
	}, nil
}
