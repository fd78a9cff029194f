package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,default=4"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=2s"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=4096"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	CensoredWords   string `env:"CENSORED_WORDS,required=true"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	AnthropicAPIKey     string        `env:"ANTHROPIC_API_KEY,required=true"`
	AnthropicModel      string        `env:"ANTHROPIC_MODEL,default=claude-sonnet-4-5"`
	GenerationMaxTokens int64         `env:"GENERATION_MAX_TOKENS,default=1024"`
	GenerationTimeout   time.Duration `env:"GENERATION_TIMEOUT,default=45s"`

	// Membership gating is active only when the project data API is set.
	ProjectAPIBaseURL string        `env:"PROJECT_API_BASE_URL"`
	ProjectAPITimeout time.Duration `env:"PROJECT_API_TIMEOUT,default=5s"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
