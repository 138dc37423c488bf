package utils

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Session      SessionConfig
	Verification VerificationConfig
	Email        EmailConfig
	SMS          SMSConfig
	RateLimit    RateLimitConfig
	Metrics      MetricsConfig
	Flow         FlowConfig
	Routes       map[string]string
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	SecureHeaders  bool
	TrustProxy     bool
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	MaxConns       int32
	MigrateOnStart bool
}

type SessionConfig struct {
	ExpiryHours int
}

// VerificationConfig controls one-time codes sent to a contact.
type VerificationConfig struct {
	CodeLength      int
	ExpiryMinutes   int
	MaxAttempts     int
	CooldownSeconds int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type SMSConfig struct {
	Endpoint string
	APIKey   string
	Sender   string
}

type RateLimitConfig struct {
	LoginAttempts    int
	RegisterAttempts int
	ResetAttempts    int
	VerifyAttempts   int
	WindowMinutes    int
}

type MetricsConfig struct {
	Username string
	Password string
}

// FlowConfig drives the headless page flows used by cmd/authflow.
type FlowConfig struct {
	Mode                  string // local or remote
	APIBaseURL            string
	ResendCooldownSeconds int
	RedirectDelayMillis   int
	RequireResetCode      bool
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom reads path when it exists and overlays environment variables.
// A missing file is not an error: every key has a default.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "woodeoo-auth")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("SECURE_HEADERS", false)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIGRATE_ON_START", true)
	v.SetDefault("SESSION_EXPIRY_HOURS", 24)
	v.SetDefault("CODE_LENGTH", 6)
	v.SetDefault("CODE_EXPIRY_MINUTES", 10)
	v.SetDefault("CODE_MAX_ATTEMPTS", 5)
	v.SetDefault("CODE_COOLDOWN_SECONDS", 60)
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("EMAIL_FROM", "noreply@woodeoo.com")
	v.SetDefault("EMAIL_FROM_NAME", "Woodeoo")
	v.SetDefault("RATE_LIMIT_LOGIN", 5)
	v.SetDefault("RATE_LIMIT_REGISTER", 3)
	v.SetDefault("RATE_LIMIT_RESET", 3)
	v.SetDefault("RATE_LIMIT_VERIFY", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_MINUTES", 15)
	v.SetDefault("FLOW_MODE", "local")
	v.SetDefault("FLOW_API_BASE_URL", "http://localhost:8080")
	v.SetDefault("FLOW_RESEND_COOLDOWN_SECONDS", 60)
	v.SetDefault("FLOW_REDIRECT_DELAY_MS", 2000)
	v.SetDefault("FLOW_REQUIRE_RESET_CODE", true)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           v.GetString("APP_NAME"),
			Port:           v.GetString("PORT"),
			Debug:          v.GetBool("DEBUG"),
			LogPath:        v.GetString("LOG_PATH"),
			SecureHeaders:  v.GetBool("SECURE_HEADERS"),
			TrustProxy:     v.GetBool("TRUST_PROXY"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			Name:           v.GetString("DB_NAME"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASS"),
			MaxConns:       v.GetInt32("DB_MAX_CONNS"),
			MigrateOnStart: v.GetBool("DB_MIGRATE_ON_START"),
		},
		Session: SessionConfig{
			ExpiryHours: v.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Verification: VerificationConfig{
			CodeLength:      v.GetInt("CODE_LENGTH"),
			ExpiryMinutes:   v.GetInt("CODE_EXPIRY_MINUTES"),
			MaxAttempts:     v.GetInt("CODE_MAX_ATTEMPTS"),
			CooldownSeconds: v.GetInt("CODE_COOLDOWN_SECONDS"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
			FromName: v.GetString("EMAIL_FROM_NAME"),
		},
		SMS: SMSConfig{
			Endpoint: v.GetString("SMS_ENDPOINT"),
			APIKey:   v.GetString("SMS_API_KEY"),
			Sender:   v.GetString("SMS_SENDER"),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts:    v.GetInt("RATE_LIMIT_LOGIN"),
			RegisterAttempts: v.GetInt("RATE_LIMIT_REGISTER"),
			ResetAttempts:    v.GetInt("RATE_LIMIT_RESET"),
			VerifyAttempts:   v.GetInt("RATE_LIMIT_VERIFY"),
			WindowMinutes:    v.GetInt("RATE_LIMIT_WINDOW_MINUTES"),
		},
		Metrics: MetricsConfig{
			Username: v.GetString("METRICS_USER"),
			Password: v.GetString("METRICS_PASS"),
		},
		Flow: FlowConfig{
			Mode:                  v.GetString("FLOW_MODE"),
			APIBaseURL:            v.GetString("FLOW_API_BASE_URL"),
			ResendCooldownSeconds: v.GetInt("FLOW_RESEND_COOLDOWN_SECONDS"),
			RedirectDelayMillis:   v.GetInt("FLOW_REDIRECT_DELAY_MS"),
			RequireResetCode:      v.GetBool("FLOW_REQUIRE_RESET_CODE"),
		},
		Routes: routeOverrides(v.GetString("ROUTE_OVERRIDES")),
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// routeOverrides parses "login=/signin,register=/join".
func routeOverrides(raw string) map[string]string {
	overrides := make(map[string]string)
	for _, pair := range splitList(raw) {
		name, path, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		overrides[strings.TrimSpace(name)] = strings.TrimSpace(path)
	}
	return overrides
}
