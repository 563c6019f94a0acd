package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/resolve"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Weights != resolve.DefaultWeights {
		t.Errorf("Weights = %+v, want %+v", cfg.Weights, resolve.DefaultWeights)
	}
	if cfg.Cache.Entries != catalog.DefaultCacheEntries || cfg.Cache.TTL != catalog.DefaultCacheTTL {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Catalog.Backend != BackendSQLite || cfg.Workers != 4 {
		t.Errorf("Catalog = %+v, Workers = %d", cfg.Catalog, cfg.Workers)
	}
}

func TestParseOverlay(t *testing.T) {
	cfg, err := Parse([]byte(`
catalog:
  backend: badger
  path: /tmp/jbind
cache:
  ttl: 30s
weights:
  boxing: 500
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Catalog.Backend != BackendBadger || cfg.Catalog.Path != "/tmp/jbind" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", cfg.Cache.TTL)
	}
	if cfg.Cache.Entries != catalog.DefaultCacheEntries {
		t.Errorf("Entries = %d, want the default", cfg.Cache.Entries)
	}
	if cfg.Weights.Boxing != 500 || cfg.Weights.VarargWrap != resolve.DefaultWeights.VarargWrap {
		t.Errorf("Weights = %+v", cfg.Weights)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown backend", "catalog: {backend: mongo}", "Catalog.Backend"},
		{"missing path", "catalog: {backend: sqlite, path: ''}", "Catalog.Path"},
		{"workers", "workers: 0", "Workers"},
		{"boxing below reference hop", "weights: {boxing: 1}", "Weights.Boxing"},
		{"varargs below boxing", "weights: {vararg_wrap: 10}", "Weights.VarargWrap"},
		{"negative widening", "weights: {primitive_widening: -1}", "Weights.PrimitiveWidening"},
		{"log format", "log: {format: xml}", "Log.Format"},
		{"verbosity", "log: {verbosity: 5}", "Log.Verbosity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestMemoryNeedsNoPath(t *testing.T) {
	cfg, err := Parse([]byte("catalog: {backend: memory, path: ''}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	store, err := cfg.OpenStore(context.Background())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*catalog.Memory); !ok {
		t.Errorf("store is %T", store)
	}
}

func TestUnknownField(t *testing.T) {
	if _, err := Parse([]byte("wokers: 3")); err == nil {
		t.Error("misspelled key accepted")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jbind.yaml")
	if err := os.WriteFile(path, []byte("workers: 8\ncatalog: {units: [app]}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if n := len(cfg.EngineOptions()); n != 2 {
		t.Errorf("got %d engine options, want weights and units", n)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, backend := range []string{BackendSQLite, BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			cfg, err := Default()
			if err != nil {
				t.Fatal(err)
			}
			cfg.Catalog.Backend = backend
			cfg.Catalog.Path = filepath.Join(dir, backend)
			store, err := cfg.OpenStore(ctx)
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			defer store.Close()

			cat, release, err := cfg.Lookup(store)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			defer release()
			if _, ok := cat.(*catalog.Cached); !ok {
				t.Errorf("lookup catalog is %T, want *catalog.Cached", cat)
			}
		})
	}
}
