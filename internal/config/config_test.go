package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "medicore", cfg.MongoDatabase)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpires)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, http.SameSiteStrictMode, cfg.CookieSameSite)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:5174"}, cfg.CORSOrigins)
	assert.Equal(t, "doctor-avatars", cfg.MinioBucket)
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	assert.EqualError(t, err, "MONGO_URI is required")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoadProductionCookies(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadCrossSiteCookies(t *testing.T) {
	setRequired(t)
	t.Setenv("COOKIE_SAMESITE", "none")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, http.SameSiteNoneMode, cfg.CookieSameSite)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("JWT_EXPIRES", "24h")
	t.Setenv("CORS_ORIGINS", "https://medicore-web1.netlify.app, https://medicore-admin.netlify.app")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpires)
	assert.Equal(t, []string{"https://medicore-web1.netlify.app", "https://medicore-admin.netlify.app"}, cfg.CORSOrigins)
	assert.True(t, cfg.MinioUseSSL)
}

func TestLoadBadSameSite(t *testing.T) {
	setRequired(t)
	t.Setenv("COOKIE_SAMESITE", "sometimes")

	_, err := Load()
	assert.Error(t, err)
}
