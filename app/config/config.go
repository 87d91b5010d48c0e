// Package config loads and persists dashboard configuration.
// Precedence: CLI flags > environment > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all tunables for the dashboard service.
type Config struct {
	// Data inputs
	DataDir          string   `mapstructure:"data_dir" yaml:"data_dir"`
	SourceCandidates []string `mapstructure:"source_candidates" yaml:"source_candidates"`
	CodebookFile     string   `mapstructure:"codebook_file" yaml:"codebook_file"`

	// Ingestion
	BatchRows int `mapstructure:"batch_rows" yaml:"batch_rows"`

	// Cache
	CacheSizeMB int `mapstructure:"cache_size_mb" yaml:"cache_size_mb"`

	// HTTP server
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// DefaultSourceCandidates is the ordered list of accepted data file names.
// First match wins. Case variants come first because historical exports
// used inconsistent casing.
var DefaultSourceCandidates = []string{
	"data.zip",
	"Data.zip",
	"DATA.zip",
	"data.csv.gz",
	"data.csv",
	"data.xlsx",
	"data.json",
}

// ResolvedCodebookPath returns the codebook path with relative paths
// joined against DataDir, so pointing the service at another data
// directory moves both inputs together.
func (c *Config) ResolvedCodebookPath() string {
	if c.CodebookFile == "" || filepath.IsAbs(c.CodebookFile) {
		return c.CodebookFile
	}
	return filepath.Join(c.DataDir, c.CodebookFile)
}

// Load loads configuration from file, env, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SURVEYDASH")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", ".")
	v.SetDefault("source_candidates", DefaultSourceCandidates)
	v.SetDefault("codebook_file", "code.csv")
	v.SetDefault("batch_rows", 50000)
	v.SetDefault("cache_size_mb", 512)
	v.SetDefault("listen_addr", ":8080")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".surveydash"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.BatchRows <= 0 {
		c.BatchRows = 50000
	}
	if len(c.SourceCandidates) == 0 {
		c.SourceCandidates = DefaultSourceCandidates
	}
	return &c, nil
}

// Save writes the configuration to the given path. If path is empty it
// writes to ~/.surveydash/config.yaml, creating the directory if necessary.
func Save(c *Config, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".surveydash")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
