package config_test

import (
	"testing"
	"time"

	"sysmanager/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, config.HeldStorePostgres, cfg.HeldStore)
	assert.Equal(t, 10*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, 1, cfg.IDGestiune)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HELD_STORE", "redis")
	t.Setenv("PRODUCT_CACHE_TTL", "30s")
	t.Setenv("ID_UTILIZATOR", "7")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, config.HeldStoreRedis, cfg.HeldStore)
	assert.Equal(t, 30*time.Second, cfg.ProductCacheTTL)
	assert.Equal(t, 7, cfg.IDUtilizator)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &config.Config{CORSOrigins: " http://casa-1.local , ,http://casa-2.local"}
	assert.Equal(t, []string{"http://casa-1.local", "http://casa-2.local"}, cfg.AllowedOrigins())
	assert.Empty(t, (&config.Config{}).AllowedOrigins())
}
