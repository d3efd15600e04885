package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ENFORCE_CATALOG_PRICE", "false")
	t.Setenv("ID_TIMEZONE_OFFSET_HOURS", "8")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RECONCILE_CRON", "")
	t.Setenv("NOTIFIER", "sendgrid")
	t.Setenv("SENDGRID_API_KEY", "")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.False(t, cfg.EnforceCatalogPrice)
	assert.Equal(t, 8, cfg.TimezoneOffsetHours)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Empty(t, cfg.ReconcileCron, "an explicitly empty schedule disables reconciliation")
	assert.Equal(t, "log", cfg.Notifier, "sendgrid without an API key falls back to log")
	assert.Same(t, cfg, AppConfig)
}

func TestEnvHelpersFallBackOnBadValues(t *testing.T) {
	t.Setenv("BAD_INT", "seven")
	t.Setenv("BAD_BOOL", "maybe")

	assert.Equal(t, 3, getEnvInt("BAD_INT", 3))
	assert.True(t, getEnvBool("BAD_BOOL", true))
	assert.Equal(t, "fallback", getEnv("UNSET_FOR_TEST", "fallback"))
	assert.Equal(t, []string{"a"}, getEnvList("UNSET_FOR_TEST", []string{"a"}))
}
