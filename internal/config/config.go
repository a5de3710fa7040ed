package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pillars/internal/reaction"
)

type Config struct {
	Engine struct {
		HiddenStemPairs   bool `yaml:"hidden_stem_pairs"`
		HiddenStemSupport bool `yaml:"hidden_stem_support"`
		MajoritySupport   bool `yaml:"majority_support"`
		Punishment        bool `yaml:"punishment"`
		Harm              bool `yaml:"harm"`
		Destruction       bool `yaml:"destruction"`
	} `yaml:"engine"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Batch struct {
		Workers   int    `yaml:"workers"`
		BatchSize int    `yaml:"batch_size"`
		JobType   string `yaml:"job_type"`
	} `yaml:"batch"`
	Advisor struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"advisor"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	opts := reaction.DefaultOptions()
	cfg.Engine.HiddenStemPairs = opts.HiddenStemPairs
	cfg.Engine.HiddenStemSupport = opts.HiddenStemSupport
	cfg.Engine.MajoritySupport = opts.MajoritySupport
	cfg.Engine.Punishment = opts.Punishment
	cfg.Engine.Harm = opts.Harm
	cfg.Engine.Destruction = opts.Destruction
	cfg.Store.Path = "pillars.db"
	cfg.Batch.Workers = 4
	cfg.Batch.BatchSize = 64
	cfg.Batch.JobType = "analyze"
	cfg.Advisor.Provider = "gemini"
	cfg.Advisor.Model = "gemini-2.0-flash"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("PILLARS_API_KEY"); apiKey != "" {
		cfg.Advisor.APIKey = apiKey
	}
	if provider := os.Getenv("PILLARS_ADVISOR_PROVIDER"); provider != "" {
		cfg.Advisor.Provider = provider
	}
	if model := os.Getenv("PILLARS_ADVISOR_MODEL"); model != "" {
		cfg.Advisor.Model = model
	}
	if db := os.Getenv("PILLARS_DB"); db != "" {
		cfg.Store.Path = db
	}
	if workers := os.Getenv("PILLARS_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("PILLARS_WORKERS must be a positive integer, got %q", workers)
		}
		cfg.Batch.Workers = n
	}

	if cfg.Batch.Workers < 1 {
		cfg.Batch.Workers = 1
	}
	if cfg.Batch.BatchSize < 1 {
		cfg.Batch.BatchSize = 1
	}
	return cfg, nil
}

// EngineOptions maps the engine section onto analyzer options.
func (c *Config) EngineOptions() reaction.Options {
	return reaction.Options{
		HiddenStemPairs:   c.Engine.HiddenStemPairs,
		HiddenStemSupport: c.Engine.HiddenStemSupport,
		MajoritySupport:   c.Engine.MajoritySupport,
		Punishment:        c.Engine.Punishment,
		Harm:              c.Engine.Harm,
		Destruction:       c.Engine.Destruction,
	}
}
