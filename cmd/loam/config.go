package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the loam configuration file (~/.config/loam/config.yaml).
// Numeric fields are pointers so we can distinguish "not set" from zero values.
type Config struct {
	// Training defaults
	Dim        *int64   `yaml:"dim"`
	Lr         *float64 `yaml:"lr"`
	Epochs     *int64   `yaml:"epochs"`
	Loss       string   `yaml:"loss"`
	Threads    *int64   `yaml:"threads"`
	WordNgrams *int64   `yaml:"word_ngrams"`
	Bucket     *int64   `yaml:"bucket"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "loam", "config.yaml")
}

// applyLoggingConfig applies config file defaults to the logging flags when
// they were not explicitly set.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyTrainConfig applies config file defaults to train command variables
// when the corresponding CLI flag was not explicitly set.
func applyTrainConfig(c *cli.Command, cfg Config,
	dim, epochs, threads, wordNgrams, bucket *int64, lr *float64, loss *string,
) {
	if cfg.Dim != nil && !c.IsSet("dim") {
		*dim = *cfg.Dim
	}
	if cfg.Lr != nil && !c.IsSet("lr") {
		*lr = *cfg.Lr
	}
	if cfg.Epochs != nil && !c.IsSet("epoch") {
		*epochs = *cfg.Epochs
	}
	if cfg.Loss != "" && !c.IsSet("loss") {
		*loss = cfg.Loss
	}
	if cfg.Threads != nil && !c.IsSet("threads") {
		*threads = *cfg.Threads
	}
	if cfg.WordNgrams != nil && !c.IsSet("word-ngrams") {
		*wordNgrams = *cfg.WordNgrams
	}
	if cfg.Bucket != nil && !c.IsSet("bucket") {
		*bucket = *cfg.Bucket
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
