package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"API_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFmt   string `mapstructure:"LOG_FORMAT"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	JWTExpires time.Duration `mapstructure:"JWT_EXPIRES"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`

	CookieSecure   bool          `mapstructure:"-"`
	CookieSameSite http.SameSite `mapstructure:"-"`
	CookieDomain   string        `mapstructure:"COOKIE_DOMAIN"`

	CORSOrigins []string `mapstructure:"-"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioPublicURL string `mapstructure:"MINIO_PUBLIC_URL"`

	TextbeltAPIKey string `mapstructure:"TEXTBELT_API_KEY"`

	DefaultAdminEmail    string `mapstructure:"DEFAULT_ADMIN_EMAIL"`
	DefaultAdminPassword string `mapstructure:"DEFAULT_ADMIN_PASSWORD"`
}

var keys = []string{
	"API_PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT",
	"MONGO_URI", "MONGO_DATABASE",
	"JWT_SECRET", "JWT_EXPIRES", "BCRYPT_COST",
	"COOKIE_SECURE", "COOKIE_SAMESITE", "COOKIE_DOMAIN",
	"CORS_ORIGINS",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL", "MINIO_BUCKET", "MINIO_PUBLIC_URL",
	"TEXTBELT_API_KEY",
	"DEFAULT_ADMIN_EMAIL", "DEFAULT_ADMIN_PASSWORD",
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_DATABASE", "medicore")
	v.SetDefault("JWT_EXPIRES", "168h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("COOKIE_SAMESITE", "strict")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "doctor-avatars")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	sameSite, err := parseSameSite(v.GetString("COOKIE_SAMESITE"))
	if err != nil {
		return nil, err
	}
	cfg.CookieSameSite = sameSite

	cfg.CookieSecure = cfg.IsProduction()
	if v.IsSet("COOKIE_SECURE") {
		cfg.CookieSecure = v.GetBool("COOKIE_SECURE")
	}
	// Browsers drop SameSite=None cookies that are not Secure.
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}

	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("COOKIE_SAMESITE must be strict, lax or none, got %q", s)
}
