// Package config loads the propbook YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// AppName names the config directory.
const AppName = "propbook"

type Config struct {
	Theme              string `yaml:"theme,omitempty"`
	DataDir            string `yaml:"dataDir,omitempty"`
	RowsPerPage        int    `yaml:"rowsPerPage,omitempty"`
	RowsPerPageOptions []int  `yaml:"rowsPerPageOptions,omitempty"`
	Dense              bool   `yaml:"dense,omitempty"`
	LogFile            string `yaml:"logFile,omitempty"`
	LogLevel           string `yaml:"logLevel,omitempty"`
	AuditFile          string `yaml:"auditFile,omitempty"`
	ExportDir          string `yaml:"exportDir,omitempty"`
	Actor              string `yaml:"actor,omitempty"`
	Unit               string `yaml:"unit,omitempty"`
}

// Dir is the per-user configuration directory.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppName)
}

// DefaultPath is the config file used when --config is not given.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

// Default returns the built-in configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		Theme:              "",
		RowsPerPage:        10,
		RowsPerPageOptions: []int{5, 10, 25},
		LogFile:            filepath.Join(dir, "propbook.log"),
		LogLevel:           "info",
		AuditFile:          filepath.Join(dir, "audit.jsonl"),
		ExportDir:          ".",
		Actor:              currentUser(),
		Unit:               "",
	}
}

func currentUser() string {
	for _, k := range []string{"PROPBOOK_ACTOR", "USER", "USERNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "operator"
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default(filepath.Dir(path))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	var set struct {
		RowsPerPage *int `yaml:"rowsPerPage"`
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	// Custom options without a page size start at the first option.
	if set.RowsPerPage == nil && len(cfg.RowsPerPageOptions) > 0 && !slices.Contains(cfg.RowsPerPageOptions, cfg.RowsPerPage) {
		cfg.RowsPerPage = cfg.RowsPerPageOptions[0]
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the paging settings.
func (c Config) Validate() error {
	if len(c.RowsPerPageOptions) == 0 {
		return errors.New("rowsPerPageOptions is empty")
	}
	for _, n := range c.RowsPerPageOptions {
		if n <= 0 {
			return fmt.Errorf("rowsPerPageOptions: %d is not positive", n)
		}
	}
	if !slices.Contains(c.RowsPerPageOptions, c.RowsPerPage) {
		return fmt.Errorf("rowsPerPage %d is not one of %v", c.RowsPerPage, c.RowsPerPageOptions)
	}
	return nil
}
