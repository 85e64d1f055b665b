package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_HOST", "MENU_CACHE_DRIVER", "MENU_CACHE_TTL", "RATE_LIMIT", "CORS_ALLOW_ORIGINS", "I18N_DEFAULT_LANG"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "300-M", cfg.RateLimit.Rate)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, "ru", cfg.I18n.DefaultLanguage)
	assert.True(t, cfg.DB.MigrateOnStart)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MENU_CACHE_DRIVER", "redis")
	t.Setenv("MENU_CACHE_TTL", "2m")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://shop.example , ,https://admin.example")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Redis.DB)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORS.AllowOrigins)
	assert.False(t, cfg.DB.MigrateOnStart)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("MENU_CACHE_TTL", "soon")
	assert.Equal(t, 30*time.Second, getDuration("MENU_CACHE_TTL", 30*time.Second))

	t.Setenv("MENU_CACHE_TTL", "-5s")
	assert.Equal(t, 30*time.Second, getDuration("MENU_CACHE_TTL", 30*time.Second))
}

func TestDSN(t *testing.T) {
	dsn := DBConfig{Host: "db", Port: "5432", User: "shop", Password: "pw", Name: "juicebar", SSLMode: "disable"}.DSN()
	assert.Equal(t, "host=db port=5432 user=shop password=pw dbname=juicebar sslmode=disable", dsn)
}
