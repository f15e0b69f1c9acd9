package config

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("DB_DRIVER", "MySQL")
    cfg, err := Load()
    require.NoError(t, err)

    assert.Equal(t, "mysql", cfg.DB.Driver)
    assert.Equal(t, int64(1199), cfg.Pricing.BaseCents)
    assert.Equal(t, int64(1999), cfg.Pricing.PairCents)
    assert.True(t, cfg.Cache.MethodSet()["GET"])
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
    t.Setenv("DB_DRIVER", "sqlite")
    _, err := Load()
    require.Error(t, err)
    assert.EqualError(t, err, `unsupported DB_DRIVER "sqlite"`)
}

func TestBuildDSN(t *testing.T) {
    mysqlCfg := DBConfig{Driver: "mysql", Host: "db", User: "app", Password: "pw", Name: "cinema"}
    assert.Equal(t, "app:pw@tcp(db:3306)/cinema?charset=utf8mb4&parseTime=true&loc=UTC", mysqlCfg.BuildDSN())

    pgCfg := DBConfig{Driver: "postgres", Host: "db", Port: "6543", User: "app", Password: "pw", Name: "cinema"}
    assert.Equal(t, "postgres://app:pw@db:6543/cinema?sslmode=disable&timezone=UTC", pgCfg.BuildDSN())

    override := DBConfig{Driver: "mysql", DSN: "custom"}
    assert.Equal(t, "custom", override.BuildDSN())
}

func TestRateLimitNormalized(t *testing.T) {
    rl := RateLimitConfig{}.Normalized()
    assert.Equal(t, 1, rl.Capacity)
    assert.Equal(t, 1, rl.RefillTokens)
    assert.Equal(t, 5*rl.RefillInterval, rl.TTL)
}
