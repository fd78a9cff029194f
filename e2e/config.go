package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_URL points at a running hub, e.g. ws://localhost:8080/ws
	ServerURL string `envconfig:"E2E_SERVER_URL"`
	ProjectID string `envconfig:"E2E_PROJECT_ID" default:"e2e"`
	// E2E_JWT_SECRET must match the secret the target server was started with
	JWTSecret     string        `envconfig:"E2E_JWT_SECRET"`
	TokenDuration time.Duration `envconfig:"E2E_TOKEN_DURATION" default:"1h"`
	ReadTimeout   time.Duration `envconfig:"E2E_READ_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
