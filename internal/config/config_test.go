package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, 3, cfg.Ledger.CompensationAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Ledger.CompensationBackoff)
	assert.Equal(t, 2*time.Second, cfg.Ledger.CompensationMaxWait)
	assert.Equal(t, 20, cfg.Sections.ACount)
	assert.Equal(t, int64(30000), cfg.Sections.BPriceCents)
	assert.True(t, cfg.Cache.Methods()["GET"])
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DB_DRIVER", "postgres")
	_, err := Load()
	assert.Error(t, err)
}

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: 0, Burst: 5, RefillEvery: 2 * time.Second}.Normalize()
	assert.Equal(t, 5, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 2*time.Second, c.RefillInterval)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestSectionTemplates(t *testing.T) {
	d := SectionDefaults{ACount: 2, ASeats: 1000, APriceCents: 45000, BCount: 1, BSeats: 800, BPriceCents: 30000}
	got := d.Templates()
	require.Len(t, got, 3)
	assert.Equal(t, "A1", got[0].Label)
	assert.Equal(t, "A2", got[1].Label)
	assert.Equal(t, SectionTemplate{Label: "B1", TotalSeats: 800, PriceCents: 30000}, got[2])
}

func TestRedisAddress(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: "6380", Addr: "x:1"}.Address())
	assert.Equal(t, "x:1", RedisConfig{Addr: "x:1"}.Address())
	assert.Equal(t, "localhost:6379", RedisConfig{}.Address())
}
