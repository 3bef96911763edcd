package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/dialogue"
)

// Config is the application configuration after defaults and validation.
type Config struct {
	DatabasePath string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warn warning error"`
	LogFormat    string `validate:"oneof=console json"`
	Engine       EngineConfig
	UseTUI       bool
}

// EngineConfig holds the conversation tunables.
type EngineConfig struct {
	ConfirmationThreshold float64       `validate:"gt=0"`
	PendingTTL            time.Duration `validate:"gte=0"`
	LearnedHistory        int           `validate:"gte=0"`
}

var validate = validator.New()

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	engine := dialogue.DefaultConfig()
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("engine.confirmation_threshold", engine.ConfirmationThreshold)
	v.SetDefault("engine.pending_ttl", engine.PendingTTL)
	v.SetDefault("engine.learned_history", engine.LearnedHistory)
	v.SetDefault("chat.tui", false)
}

// Load reads the configuration from v, which must already have its config
// file, environment and flags bound.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		UseTUI:       v.GetBool("chat.tui"),
		Engine: EngineConfig{
			ConfirmationThreshold: v.GetFloat64("engine.confirmation_threshold"),
			PendingTTL:            v.GetDuration("engine.pending_ttl"),
			LearnedHistory:        v.GetInt("engine.learned_history"),
		},
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Dialogue converts the engine settings for the dialogue engine.
func (c EngineConfig) Dialogue() dialogue.Config {
	cfg := dialogue.DefaultConfig()
	cfg.ConfirmationThreshold = c.ConfirmationThreshold
	cfg.PendingTTL = c.PendingTTL
	cfg.LearnedHistory = c.LearnedHistory
	return cfg
}
