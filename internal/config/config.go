// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value can additionally be overridden by the environment variable
// named in its env tag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing. Everything else has a default.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StoragePath is the filesystem path to the SQLite .db file holding
	// the saved collection.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	Collection Collection `yaml:"collection"`
	Visualizer Visualizer `yaml:"visualizer"`
	Autosave   Autosave   `yaml:"autosave"`
	Import     Import     `yaml:"import"`
	Export     Export     `yaml:"export"`
	Metrics    Metrics    `yaml:"metrics"`
}

// Collection holds collection store settings.
type Collection struct {
	PageSize int `yaml:"page_size" env:"COLLECTION_PAGE_SIZE" env-default:"10"`
}

// Visualizer holds settings for the visualization run the host performs
// at startup. An empty Algorithm disables it.
type Visualizer struct {
	StepDelay time.Duration `yaml:"step_delay" env:"VISUALIZER_STEP_DELAY" env-default:"500ms"`
	Algorithm string        `yaml:"algorithm" env:"VISUALIZER_ALGORITHM"`
	Field     string        `yaml:"field" env:"VISUALIZER_FIELD" env-default:"id"`
	// cleanenv fills zero values from env-default, so the flag is phrased
	// to default to false.
	Descending bool `yaml:"descending" env:"VISUALIZER_DESCENDING"`
	// Query is only used when Algorithm names a search algorithm.
	Query string `yaml:"query" env:"VISUALIZER_QUERY"`
}

// Autosave holds the periodic snapshot settings. A negative interval
// disables the ticker; the collection is still saved on shutdown.
type Autosave struct {
	Interval time.Duration `yaml:"interval" env:"AUTOSAVE_INTERVAL" env-default:"30s"`
}

// Import names a file to import at startup, if any.
type Import struct {
	Path string `yaml:"path" env:"IMPORT_PATH"`
}

// Export names a file the collection is exported to on shutdown, if any.
type Export struct {
	Path   string `yaml:"path" env:"EXPORT_PATH"`
	Format string `yaml:"format" env:"EXPORT_FORMAT" env-default:"json"`
}

// Metrics names the node-exporter textfile written on shutdown, if any.
type Metrics struct {
	Textfile string `yaml:"textfile" env:"METRICS_TEXTFILE"`
}

// Load reads the config file at path, applies environment overrides and
// checks required values.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if cfg.Collection.PageSize < 1 {
		return nil, fmt.Errorf("collection.page_size must be positive, got %d", cfg.Collection.PageSize)
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config, exiting
// the process if that fails. Functions prefixed with "Must" are allowed to
// fatal: if this returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
