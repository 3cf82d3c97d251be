package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTExpiry     time.Duration `mapstructure:"JWT_EXPIRY"`
	ResetTokenTTL time.Duration `mapstructure:"RESET_TOKEN_TTL"`
	// ExposeResetToken returns the password reset token in the API response
	// instead of only logging it. Development convenience; never enable in
	// production.
	ExposeResetToken bool `mapstructure:"EXPOSE_RESET_TOKEN"`

	FHIRBaseURL   string        `mapstructure:"FHIR_BASE_URL"`
	FHIRAuthToken string        `mapstructure:"FHIR_AUTH_TOKEN"`
	FHIRTimeout   time.Duration `mapstructure:"FHIR_TIMEOUT"`
	HL7Host       string        `mapstructure:"HL7_HOST"`
	HL7Port       int           `mapstructure:"HL7_PORT"`
	HL7FacilityID string        `mapstructure:"HL7_FACILITY_ID"`
	HL7Timeout    time.Duration `mapstructure:"HL7_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("EXPOSE_RESET_TOKEN", false)
	v.SetDefault("FHIR_TIMEOUT", "10s")
	v.SetDefault("HL7_PORT", 2575)
	v.SetDefault("HL7_FACILITY_ID", "RMD")
	v.SetDefault("HL7_TIMEOUT", "10s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"CORS_ORIGINS", "JWT_SECRET", "JWT_EXPIRY", "RESET_TOKEN_TTL",
		"EXPOSE_RESET_TOKEN", "FHIR_BASE_URL", "FHIR_AUTH_TOKEN",
		"FHIR_TIMEOUT", "HL7_HOST", "HL7_PORT", "HL7_FACILITY_ID",
		"HL7_TIMEOUT",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. JWT_SECRET is always
// required because the server signs its own session tokens. In production the
// reset-token echo must be off.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
	}
	if c.IsProduction() && c.ExposeResetToken {
		return fmt.Errorf("EXPOSE_RESET_TOKEN must not be enabled in production")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry)
	}
	return nil
}

// EHRConfigured reports whether at least one EHR channel has endpoint
// coordinates. When false the referral service skips the sync step entirely.
func (c *Config) EHRConfigured() bool {
	return c.FHIRBaseURL != "" || c.HL7Host != ""
}
