package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "packhouse-backend", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "public", cfg.Database.BaseSchema)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Reconciliation.RunTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Reconciliation.LockTTL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("cron hour out of range", func(t *testing.T) {
		cfg := base()
		cfg.Reconciliation.CronHour = 24
		assert.ErrorContains(t, cfg.validate(), "cron_hour")
	})

	t.Run("cron minute out of range", func(t *testing.T) {
		cfg := base()
		cfg.Reconciliation.CronMinute = -1
		assert.ErrorContains(t, cfg.validate(), "cron_minute")
	})

	t.Run("lock ttl shorter than run timeout", func(t *testing.T) {
		cfg := base()
		cfg.Reconciliation.LockTTL = 5 * time.Minute
		assert.ErrorContains(t, cfg.validate(), "lock_ttl")
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "packhouse",
		Password: "p@ss/word",
		DBName:   "packhouse",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss/word", "password must be escaped")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	require.Equal(t, "cache.internal:6380", r.Addr())
}
