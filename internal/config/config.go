package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the CLI configuration loaded from scrapybara.yaml and the
// environment.
type Config struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Environment string        `mapstructure:"environment"` // production, staging or development
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Output      string        `mapstructure:"output"` // json or yaml; empty picks by terminal
	Logging     LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads path, or scrapybara.yaml from the working directory and the
// user config directory when path is empty. A missing default file is not
// an error. Environment variables override file values (prefix SCRAPYBARA_,
// dots replaced with underscores), so SCRAPYBARA_API_KEY sets api_key.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCRAPYBARA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("scrapybara")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "scrapybara"))
		}
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("environment", "production")
	v.SetDefault("timeout", "0s")
	v.SetDefault("max_retries", 0)
	v.SetDefault("output", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Environment) {
	case "", "production", "staging", "development":
	default:
		return fmt.Errorf("environment must be production, staging or development, got %q", c.Environment)
	}

	switch strings.ToLower(c.Output) {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("output must be json or yaml, got %q", c.Output)
	}

	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must not be negative")
	}

	return nil
}
