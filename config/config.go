package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication configuration
//   - storage.go: DynamoDB and Redis configuration
//   - http.go: HTTP server configuration
//   - reporting.go: Dashboard report configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// AWSRegion is the region for all AWS clients.
	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`

	// Authentication configuration
	Auth AuthConfig

	// Storage configuration
	Dynamo DynamoConfig `envPrefix:"DYNAMO_"`
	Redis  RedisConfig  `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Dashboard report configuration
	Reports ReportsConfig `envPrefix:"REPORTS_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
