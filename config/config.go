// Package config loads jbind's settings: embedded defaults overlaid with
// an optional YAML file.
package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/catalog/kvstore"
	"github.com/dhamidi/jbind/catalog/sqlstore"
	"github.com/dhamidi/jbind/resolve"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

type Config struct {
	Catalog CatalogConfig   `yaml:"catalog"`
	Cache   CacheConfig     `yaml:"cache"`
	Weights resolve.Weights `yaml:"weights"`
	Workers int             `yaml:"workers" validate:"gte=1,lte=256"`
	Log     LogConfig       `yaml:"log"`
}

type CatalogConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory sqlite badger"`
	// Path is the database file for sqlite and the directory for badger.
	Path string `yaml:"path" validate:"required_unless=Backend memory"`
	// Units restricts resolution to these compilation units; empty means
	// all.
	Units []string `yaml:"units" validate:"dive,required"`
}

// CacheConfig sizes the catalog lookup caches. Zero entries disables
// them.
type CacheConfig struct {
	Entries int64         `yaml:"entries" validate:"gte=0"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

type LogConfig struct {
	Verbosity int    `yaml:"verbosity" validate:"gte=0,lte=2"`
	Format    string `yaml:"format" validate:"omitempty,oneof=json line"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := decode(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	return cfg, nil
}

// Load reads the defaults and overlays the file at path, if path is not
// empty.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg, err := Default()
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays data on the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// EngineOptions configures a resolution engine from c.
func (c *Config) EngineOptions() []resolve.Option {
	opts := []resolve.Option{resolve.WithWeights(c.Weights)}
	if len(c.Catalog.Units) > 0 {
		opts = append(opts, resolve.WithUnits(c.Catalog.Units...))
	}
	return opts
}

// OpenStore opens the configured catalog backend.
func (c *Config) OpenStore(ctx context.Context) (catalog.Store, error) {
	switch c.Catalog.Backend {
	case BackendMemory:
		return catalog.NewMemory(), nil
	case BackendSQLite:
		s, err := sqlstore.Open(ctx, c.Catalog.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		s, err := kvstore.Open(c.Catalog.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend)
}

// Lookup wraps cat in the configured caches. The returned close function
// releases them.
func (c *Config) Lookup(cat catalog.Catalog) (catalog.Catalog, func(), error) {
	if c.Cache.Entries == 0 {
		return cat, func() {}, nil
	}
	cached, err := catalog.NewCached(cat, catalog.CacheOptions{MaxEntries: c.Cache.Entries, TTL: c.Cache.TTL})
	if err != nil {
		return nil, nil, err
	}
	return cached, cached.Close, nil
}
