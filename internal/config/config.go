package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Eval    EvalConfig    `yaml:"eval" mapstructure:"eval"`
	Perturb PerturbConfig `yaml:"perturb" mapstructure:"perturb"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// LLMConfig holds the model endpoint settings shared by every command that
// talks to an LLM.
type LLMConfig struct {
	Provider  string  `yaml:"provider" mapstructure:"provider"`
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Model     string  `yaml:"model" mapstructure:"model"`
	MaxTokens int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	PacePerS  float64 `yaml:"pace_per_second" mapstructure:"pace_per_second"`
}

// EvalConfig configures the batch caption evaluation.
type EvalConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
	Limit   int `yaml:"limit" mapstructure:"limit"`
}

// PerturbConfig configures perturbation generation and combination.
type PerturbConfig struct {
	Workers   int     `yaml:"workers" mapstructure:"workers"`
	ImageRoot string  `yaml:"image_root" mapstructure:"image_root"`
	Variant   string  `yaml:"variant" mapstructure:"variant"`
	Ratio     float64 `yaml:"ratio" mapstructure:"ratio"`
	Phrases   string  `yaml:"phrases" mapstructure:"phrases"`
	Seed      int64   `yaml:"seed" mapstructure:"seed"`
}

// CacheConfig configures the local LLM response cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CAPEVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.pace_per_second", 0.5)
	v.SetDefault("eval.workers", 4)
	v.SetDefault("eval.limit", 0)
	v.SetDefault("perturb.workers", 4)
	v.SetDefault("perturb.variant", "version1")
	v.SetDefault("perturb.ratio", 1.0)
	v.SetDefault("perturb.seed", 0)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "capeval-cache.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a given command mode depends on and reports
// every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	requireLLM := func() {
		if c.LLM.APIKey == "" {
			problems = append(problems, "llm.api_key is required")
		}
		if c.LLM.Model == "" {
			problems = append(problems, "llm.model is required")
		}
		switch c.LLM.Provider {
		case "anthropic", "openai":
		default:
			problems = append(problems, "llm.provider must be anthropic or openai")
		}
	}

	switch mode {
	case "eval":
		requireLLM()
		if c.Eval.Workers < 1 || c.Eval.Workers > 50 {
			problems = append(problems, "eval.workers must be between 1 and 50")
		}
	case "perturb":
		requireLLM()
		if c.Perturb.Workers < 1 || c.Perturb.Workers > 50 {
			problems = append(problems, "perturb.workers must be between 1 and 50")
		}
		if c.Perturb.ImageRoot == "" {
			problems = append(problems, "perturb.image_root is required")
		}
	case "combine":
		if c.Perturb.Ratio < 0 || c.Perturb.Ratio > 1 {
			problems = append(problems, "perturb.ratio must be in [0,1]")
		}
	case "score", "merge":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
