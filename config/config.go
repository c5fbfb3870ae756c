// Package config loads the node API configuration.
//
// Values come from, in increasing order of precedence: built-in
// defaults, an optional YAML file, NODEAPI_* environment variables
// (dots become underscores, e.g. NODEAPI_PAGING_MAX_PAGE_SIZE) and
// command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blockberries/nodeapi/endpoint"
	"github.com/blockberries/nodeapi/types"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "NODEAPI"

// Store backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Config is the complete, immutable configuration of a node API
// process.
type Config struct {
	Server  *Server
	Paging  *Paging
	Logging *Logging
	Store   *Store
	Cache   *Cache
	Demo    *Demo
}

type Server struct {
	HTTPAddr string   `yaml:"http_addr" json:"http_addr"`
	GRPCAddr string   `yaml:"grpc_addr" json:"grpc_addr"`
	APIs     []string `yaml:"apis" json:"apis"`
}

type Paging struct {
	MaxPageSize int `yaml:"max_page_size" json:"max_page_size"`
	// DefaultPageSize of zero means MaxPageSize.
	DefaultPageSize            int           `yaml:"default_page_size" json:"default_page_size"`
	MaxIterationDuration       time.Duration `yaml:"max_iteration_duration" json:"max_iteration_duration"`
	MinPageSizeDespiteDuration int           `yaml:"min_page_size_despite_duration" json:"min_page_size_despite_duration"`
}

type Logging struct {
	Level string `yaml:"level" json:"level"`
}

type Store struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

type Cache struct {
	EntityMetaSize int `yaml:"entity_meta_size" json:"entity_meta_size"`
}

type Demo struct {
	// Entities is the size of the demo ledger seeded at startup. Zero
	// disables seeding.
	Entities int `yaml:"entities" json:"entities"`
}

// NewViper returns a viper instance with every default set and
// environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	limits := endpoint.DefaultLimits()
	v.SetDefault("server.http_addr", ":3333")
	v.SetDefault("server.grpc_addr", ":3334")
	v.SetDefault("server.apis", []string{"engine_state", "browse"})
	v.SetDefault("paging.max_page_size", limits.MaxPageSize)
	v.SetDefault("paging.default_page_size", 0)
	v.SetDefault("paging.max_iteration_duration", limits.MaxIterationDuration)
	v.SetDefault("paging.min_page_size_despite_duration", limits.MinPageSizeDespiteDuration)
	v.SetDefault("logging.level", "info")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.path", "./data")
	v.SetDefault("cache.entity_meta_size", 4096)
	v.SetDefault("demo.entities", 0)
}

// Load reads the optional file at path into v and builds a validated
// Config. An empty path skips the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server:  getServerConfig(v),
		Paging:  getPagingConfig(v),
		Logging: &Logging{Level: v.GetString("logging.level")},
		Store: &Store{
			Backend: v.GetString("store.backend"),
			Path:    v.GetString("store.path"),
		},
		Cache: &Cache{EntityMetaSize: v.GetInt("cache.entity_meta_size")},
		Demo:  &Demo{Entities: v.GetInt("demo.entities")},
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getServerConfig(v *viper.Viper) *Server {
	var apis []string
	for _, s := range v.GetStringSlice("server.apis") {
		for _, name := range strings.Split(s, ",") {
			if name = strings.TrimSpace(name); name != "" {
				apis = append(apis, name)
			}
		}
	}
	return &Server{
		HTTPAddr: v.GetString("server.http_addr"),
		GRPCAddr: v.GetString("server.grpc_addr"),
		APIs:     apis,
	}
}

func getPagingConfig(v *viper.Viper) *Paging {
	return &Paging{
		MaxPageSize:                v.GetInt("paging.max_page_size"),
		DefaultPageSize:            v.GetInt("paging.default_page_size"),
		MaxIterationDuration:       v.GetDuration("paging.max_iteration_duration"),
		MinPageSizeDespiteDuration: v.GetInt("paging.min_page_size_despite_duration"),
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	if err := c.PagingLimits().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("paging: %w", err))
	}
	if _, err := c.APISet(); err != nil {
		errs = append(errs, fmt.Errorf("server.apis: %w", err))
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendBadger:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path: required for the badger backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	if c.Cache.EntityMetaSize < 1 {
		errs = append(errs, fmt.Errorf("cache.entity_meta_size: must be at least 1, got %d", c.Cache.EntityMetaSize))
	}
	if c.Demo.Entities < 0 {
		errs = append(errs, fmt.Errorf("demo.entities: must not be negative, got %d", c.Demo.Entities))
	}
	return errors.Join(errs...)
}

// PagingLimits returns the paging limits the endpoints are built with.
func (c *Config) PagingLimits() endpoint.Limits {
	def := c.Paging.DefaultPageSize
	if def == 0 {
		def = c.Paging.MaxPageSize
	}
	return endpoint.Limits{
		MaxPageSize:                c.Paging.MaxPageSize,
		DefaultPageSize:            def,
		MaxIterationDuration:       c.Paging.MaxIterationDuration,
		MinPageSizeDespiteDuration: c.Paging.MinPageSizeDespiteDuration,
	}
}

// APISet returns the sub-APIs to serve.
func (c *Config) APISet() (types.APISet, error) {
	s, err := types.ParseAPISet(c.Server.APIs)
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return 0, errors.New("at least one api must be enabled")
	}
	return s, nil
}
