package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:3000", cfg.StoreURL)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.False(t, cfg.StockVerify)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_URL", "http://store:4000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,,k2:9092")
	t.Setenv("STOCK_VERIFY", "true")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("LEDGER_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://store:4000", cfg.StoreURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.StockVerify)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.LedgerWorkers)
}

func TestLoad_RejectsBadThreshold(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "LOW_STOCK_THRESHOLD")
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}
