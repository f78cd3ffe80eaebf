// Package config binds the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/internal/core"
	pkgredis "github.com/study-buddy/server/pkg/redis"
	"github.com/study-buddy/server/pkg/sqlite"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	HTTP        HTTPConfig

	// Infrastructure
	Redis  pkgredis.Config
	SQLite sqlite.Config

	// LLM provider. An empty key switches to the offline capabilities.
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierModelConfig
	Response     model.ResponseModelConfig
	Conversation model.ConversationConfig
	PlanStore    model.PlanStoreConfig
}

type HTTPConfig struct {
	Port      string `envconfig:"HTTP_PORT" default:"8000" validate:"required,numeric"`
	BodyLimit int    `envconfig:"HTTP_BODY_LIMIT" default:"1048576" validate:"gt=0"`
}

// Load reads the given .env files (missing files are ignored), then binds and validates the environment.
func Load(envFiles ...string) (*AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	cfg.Conversation.Store = strings.ToLower(strings.TrimSpace(cfg.Conversation.Store))
	cfg.PlanStore.Kind = strings.ToLower(strings.TrimSpace(cfg.PlanStore.Kind))

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return ":" + c.HTTP.Port
}
