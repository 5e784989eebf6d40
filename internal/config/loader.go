package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/edgard/complimentbot/internal/keyword"
)

// Load reads configuration from:
// 1. default values
// 2. the YAML file at path
// 3. BOT_* environment variables (BOT_TOKEN for the token)
//
// trigger_keywords is decoded separately to keep its declaration order.
// Every failure wraps ErrConfig.
func Load(path string) (*Config, error) {
	startTime := time.Now()
	slog.Debug("loading configuration", "path", path)

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"guild_id", "group_id", "random_compliments_channel_id"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("%w: binding %s: %v", ErrConfig, key, err)
		}
	}
	if err := v.BindEnv("bot_token", "BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("%w: binding bot_token: %v", ErrConfig, err)
	}

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfig, err)
		}
		fileFound = false
		slog.Warn("configuration file not found, relying on environment", "path", path)
	}

	if !v.IsSet("guild_id") && v.IsSet("group_id") {
		v.Set("guild_id", v.Get("group_id"))
	}

	if err := checkCompliments(v.Get("compliments")); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfig, err)
	}

	if fileFound {
		table, err := loadKeywordTable(path)
		if err != nil {
			return nil, err
		}
		cfg.KeywordResponses = table
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully",
		"platform", cfg.Platform,
		"compliments", len(cfg.Compliments),
		"keywords", len(cfg.KeywordResponses),
		"prefix", cfg.CommandPrefix,
		"duration_ms", time.Since(startTime).Milliseconds())

	return cfg, nil
}

// checkCompliments rejects scalar compliments before the decoder gets a chance
// to split them into a list.
func checkCompliments(raw any) error {
	switch raw.(type) {
	case nil:
		return fmt.Errorf("%w: compliments is required", ErrConfig)
	case []any, []string:
		return nil
	default:
		return fmt.Errorf("%w: compliments must be a list of strings, got %T", ErrConfig, raw)
	}
}

func loadKeywordTable(path string) (keyword.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfig, err)
	}

	var doc struct {
		TriggerKeywords keyword.Table `yaml:"trigger_keywords"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: trigger_keywords: %v", ErrConfig, err)
	}
	return doc.TriggerKeywords, nil
}

// Validate checks struct constraints and the cross-field rules of the scheduler section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	for name, task := range c.Scheduler.Tasks {
		if !task.Enabled {
			continue
		}
		if task.Interval < 0 {
			return fmt.Errorf("%w: scheduler task %q has a negative interval", ErrConfig, name)
		}
		if task.Interval == 0 && task.Schedule == "" {
			return fmt.Errorf("%w: scheduler task %q needs an interval or a schedule", ErrConfig, name)
		}
	}
	return nil
}
