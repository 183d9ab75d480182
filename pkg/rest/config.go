package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries the client settings usually supplied by the environment.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.example.com".
	BaseURL string `env:"RESOURCE_API_URL"`
	// Token is the bearer token sent on every request; empty disables auth.
	Token string `env:"RESOURCE_API_TOKEN"`
	// Timeout bounds each request.
	Timeout time.Duration `env:"RESOURCE_API_TIMEOUT, default=30s"`
}

// ConfigFromEnv loads Config from process environment variables.
func ConfigFromEnv(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("rest: load config: %w", err)
	}
	return cfg, nil
}
