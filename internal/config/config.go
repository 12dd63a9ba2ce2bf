package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"env"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	DatabaseURL    string        `mapstructure:"database_url"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	ScoreWorkers   int           `mapstructure:"score_workers"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	PolicyFile     string        `mapstructure:"policy_file"`
	MatchCacheTTL  time.Duration `mapstructure:"match_cache_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ErrNoDatabase is returned alongside a usable Config when no database URL
// is configured. Callers decide whether that is fatal.
var ErrNoDatabase = errors.New("DATABASE_URL not set")

// Load reads defaults, then an optional riskmatch.yaml or .riskmatch.yaml
// from configPath (or the working directory), then the environment.
// Environment keys use the RISKMATCH_ prefix; DATABASE_URL, LISTEN_ADDR and
// APP_ENV are also honoured.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetDefault("env", "development")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("score_workers", 0)
	v.SetDefault("poll_interval", 500*time.Millisecond)
	v.SetDefault("policy_file", "")
	v.SetDefault("match_cache_ttl", time.Hour)
	v.SetDefault("request_timeout", 30*time.Second)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, name := range []string{"riskmatch", ".riskmatch"} {
			v.SetConfigName(name)
			err := v.ReadInConfig()
			if err == nil {
				break
			}
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("RISKMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database_url", "RISKMATCH_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("listen_addr", "RISKMATCH_LISTEN_ADDR", "LISTEN_ADDR")
	_ = v.BindEnv("env", "RISKMATCH_ENV", "APP_ENV")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return cfg, ErrNoDatabase
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	if cfg.ScoreWorkers < 0 {
		return fmt.Errorf("score_workers must be >= 0, got %d", cfg.ScoreWorkers)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.MatchCacheTTL <= 0 {
		return fmt.Errorf("match_cache_ttl must be positive, got %s", cfg.MatchCacheTTL)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return nil
}
