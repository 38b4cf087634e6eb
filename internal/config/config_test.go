package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "pousada")
	t.Setenv("DB_NAME", "pousada_db")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "3001", cfg.Port)
	require.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	require.Equal(t, "3306", cfg.DB.Port)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.True(t, cfg.Auth.AdminRequired)
	require.False(t, cfg.Booking.InclusiveBoundaries)
	require.Equal(t, 3, cfg.Booking.IDRetries)
	require.True(t, cfg.Cache.Methods["GET"])
	require.False(t, cfg.Mail.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_SSL", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "reservas@example.com")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1m")
	t.Setenv("BOOKING_INCLUSIVE_BOUNDARIES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.DB.SSL)
	require.True(t, cfg.Mail.Enabled())
	require.True(t, cfg.Cache.Methods["HEAD"])
	require.True(t, cfg.Booking.InclusiveBoundaries)
	require.Equal(t, 1, cfg.RateLimit.Capacity)
	require.Equal(t, 5*time.Minute, cfg.RateLimit.TTL)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestRedisConfig_Address(t *testing.T) {
	require.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: "6380", Addr: "x:1"}.Address())
	require.Equal(t, "x:1", RedisConfig{Addr: "x:1"}.Address())
	require.Equal(t, "localhost:6379", RedisConfig{}.Address())
}

func TestLoadDB_NoJWTSecretNeeded(t *testing.T) {
	t.Setenv("DB_USER", "pousada")
	t.Setenv("DB_NAME", "pousada_db")
	t.Setenv("JWT_SECRET", "")

	db, err := LoadDB()
	require.NoError(t, err)
	require.Equal(t, "pousada_db", db.Name)
	require.Equal(t, "localhost", db.Host)

	t.Setenv("DB_NAME", " ")
	_, err = LoadDB()
	require.Error(t, err)
}
