// Package config resolves the runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App       AppSettings
	HTTP      HTTPSettings
	Auth      AuthSettings
	Log       LogSettings
	Firestore FirestoreSettings
	Sessions  SessionSettings
	Billing   BillingSettings
}

type AppSettings struct {
	Name        string
	Environment string
}

type HTTPSettings struct {
	Port        int
	MaxUploadMB int
}

type AuthSettings struct {
	Enabled   bool
	JWTSecret string
	Role      string
}

type LogSettings struct {
	Level string
}

// FirestoreSettings is optional: without a project the service keeps
// cancellations in memory and authentication is disabled.
type FirestoreSettings struct {
	ProjectID  string
	DatabaseID string
}

type SessionSettings struct {
	TTL           time.Duration
	SweepSchedule string
}

// BillingSettings bounds the apuração. MaxGapSpan is the largest
// max-min range accepted for the document numbers of one series.
type BillingSettings struct {
	MaxGapSpan int
}

// Enabled reports whether a Firestore project was configured.
func (f FirestoreSettings) Enabled() bool {
	return f.ProjectID != ""
}

// Load resolves the application configuration from environment variables.
// Variables from a .env file are loaded first when the file exists; values
// already set in the environment win.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "apuracao-faturamento"),
			Environment: getEnv("APP_ENV", "production"),
		},
		HTTP: HTTPSettings{
			Port:        getEnvAsInt("PORT", 8080),
			MaxUploadMB: getEnvAsInt("MAX_UPLOAD_MB", 50),
		},
		Auth: AuthSettings{
			JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
			Role:      getEnv("AUTH_ROLE", "apuracao"),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Firestore: FirestoreSettings{
			ProjectID:  strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID")),
			DatabaseID: getEnv("FIRESTORE_DATABASE_ID", "(default)"),
		},
		Sessions: SessionSettings{
			TTL:           getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			SweepSchedule: getEnv("SESSION_SWEEP", "@every 10m"),
		},
		Billing: BillingSettings{
			MaxGapSpan: getEnvAsInt("MAX_GAP_SPAN", 100000),
		},
	}
	cfg.Auth.Enabled = getEnvAsBool("AUTH_ENABLED", cfg.Firestore.Enabled())

	var errs []error
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid config: PORT fora do intervalo: %d", cfg.HTTP.Port))
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("invalid config: MAX_UPLOAD_MB deve ser maior que zero"))
	}
	if cfg.Sessions.TTL <= 0 {
		errs = append(errs, errors.New("invalid config: SESSION_TTL deve ser maior que zero"))
	}
	if cfg.Billing.MaxGapSpan <= 0 {
		errs = append(errs, errors.New("invalid config: MAX_GAP_SPAN deve ser maior que zero"))
	}
	if cfg.Auth.Enabled {
		if !cfg.Firestore.Enabled() {
			errs = append(errs, errors.New("invalid config: FIRESTORE_PROJECT_ID é obrigatório quando AUTH_ENABLED=true"))
		}
		if cfg.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("invalid config: JWT_SECRET é obrigatório quando AUTH_ENABLED=true"))
		}
	}
	return cfg, errors.Join(errs...)
}

// Address returns the HTTP listen address.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

// MaxUploadBytes converts the upload limit to bytes.
func (h HTTPSettings) MaxUploadBytes() int64 {
	return int64(h.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
