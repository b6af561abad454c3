package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	Environment        string `env:"APP_ENV" envDefault:"development"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	ServiceDatabaseURL string `env:"SERVICE_DATABASE_URL"`
	RedisURL           string `env:"REDIS_URL,required"`
	AdminPasscode      string `env:"ADMIN_PASSCODE"`
	AdminPasscodeHash  string `env:"ADMIN_PASSCODE_HASH"`
	JWTSecret          string `env:"JWT_SECRET,required"`
	AnthropicAPIKey    string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	StripeSecretKey    string `env:"STRIPE_SECRET_KEY"`
	SiteBaseURL        string `env:"SITE_BASE_URL" envDefault:"http://localhost:8080"`
	StaticDir          string `env:"STATIC_DIR" envDefault:"static"`
	TokenTTLHours      int    `env:"TOKEN_TTL_HOURS" envDefault:"12"`
	RateLimitEnabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitMax       int    `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindowMin int    `env:"RATE_LIMIT_WINDOW_MINUTES" envDefault:"15"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMin) * time.Minute
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminPasscodeHash != "" {
		if !strings.HasPrefix(c.AdminPasscodeHash, "$2a$") &&
			!strings.HasPrefix(c.AdminPasscodeHash, "$2b$") &&
			!strings.HasPrefix(c.AdminPasscodeHash, "$2y$") {
			return fmt.Errorf("ADMIN_PASSCODE_HASH must be a bcrypt hash (generate with: go run scripts/hash-passcode.go <passcode>)")
		}
	}

	if c.AdminPasscode == "" && c.AdminPasscodeHash == "" {
		return fmt.Errorf("either ADMIN_PASSCODE or ADMIN_PASSCODE_HASH must be set")
	}

	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}
		if c.AdminPasscodeHash == "" {
			log.Warn().Msg("ADMIN_PASSCODE_HASH is empty in production: plain passcode comparison will be used")
		}
		if c.ServiceDatabaseURL == "" {
			log.Warn().Msg("SERVICE_DATABASE_URL is empty in production: admin delete route will fail with server misconfiguration")
		}
		if !c.RateLimitEnabled {
			log.Warn().Msg("RATE_LIMIT_ENABLED is false in production: inbound requests are not rate limited")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
