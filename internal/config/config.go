// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The CSRF layer derives a 32-byte key from it.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"PLUME_DB_PATH" envDefault:"./data/plume.db"`
	SessionSecret string `env:"PLUME_SESSION_SECRET,required"`
	ServerHost    string `env:"PLUME_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PLUME_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"PLUME_ENV" envDefault:"development"`
	LogLevel      string `env:"PLUME_LOG_LEVEL" envDefault:"info"`

	// AdminEmail is the single administrator address. Admin access is decided
	// by exact, case-sensitive equality against this value.
	AdminEmail string `env:"PLUME_ADMIN_EMAIL,required"`

	// ImageSoftLimit is the advertised upload size hint in bytes. It is not
	// enforced on the write path; the editor surfaces it to the admin.
	ImageSoftLimit int64 `env:"PLUME_IMAGE_SOFT_LIMIT" envDefault:"1048576"`

	// GeoIP configuration
	GeoIPDBPath string `env:"PLUME_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Retention for the view log and event log, in days.
	RetentionDays int `env:"PLUME_RETENTION_DAYS" envDefault:"90"`

	// OpenAIKey enables the editor assist endpoint when set.
	OpenAIKey   string `env:"PLUME_OPENAI_API_KEY"`
	OpenAIModel string `env:"PLUME_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Seeding configuration. The password is only used when DoSeed creates
	// the admin account; change it after the first login.
	DoSeed        bool   `env:"PLUME_DO_SEED" envDefault:"false"`
	AdminPassword string `env:"PLUME_ADMIN_PASSWORD" envDefault:"changeme"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// AssistEnabled returns true if the OpenAI-backed editor assist is configured.
func (c Config) AssistEnabled() bool {
	return c.OpenAIKey != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PLUME_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PLUME_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if _, err := mail.ParseAddress(cfg.AdminEmail); err != nil {
		return nil, fmt.Errorf("PLUME_ADMIN_EMAIL is not a valid address: %w", err)
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PLUME_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
