package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StatsSourceBackend, cfg.Stats.Source)
	assert.Equal(t, PushDriverMemory, cfg.Push.Driver)
	assert.Equal(t, "dashboard-updates", cfg.Push.Topic)
	assert.Equal(t, 10, cfg.Dashboard.ListCap)
	assert.Equal(t, time.Second, cfg.Push.ReconnectDelay)
	assert.Equal(t, 5, cfg.Push.ReconnectAttempts)
	assert.Equal(t, "0.0.0.0:8081", cfg.HTTP.Addr())
}

func TestFromViper_LeeOverrides(t *testing.T) {
	v := viper.New()
	v.Set("BACKEND_URL", "http://api.local/api/")
	v.Set("DASHBOARD_REFRESH_INTERVAL", "30s")
	v.Set("PUSH_RECONNECT_DELAY", "2")
	v.Set("PUSH_DRIVER", "redis")
	v.Set("DB_PORT", "6543")
	v.Set("DB_ENSURE_SCHEMA", "true")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "http://api.local/api", cfg.Backend.BaseURL, "se recorta la barra final")
	assert.Equal(t, 30*time.Second, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, 2*time.Second, cfg.Push.ReconnectDelay)
	assert.Equal(t, PushDriverRedis, cfg.Push.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.True(t, cfg.DB.EnsureSchema)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("PUSH_DRIVER", "socketio")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/inv?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
