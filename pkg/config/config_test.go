package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.Ledger.AllowNegative, "por defecto se conserva la resta incondicional")
	assert.Equal(t, 30, cfg.Ledger.UsageWindowDays)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_LeeVariablesComoTexto(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_ALLOW_NEGATIVE", "false")
	v.Set("LEDGER_USAGE_WINDOW_DAYS", "14")
	v.Set("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	v.Set("HTTP_PORT", "9090")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.False(t, cfg.Ledger.AllowNegative)
	assert.Equal(t, 14, cfg.Ledger.UsageWindowDays)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestFromViper_VentanaInvalida(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_USAGE_WINDOW_DAYS", 0)

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "granja", Password: "p@ss:word", DBName: "dairy", SSLMode: "disable"}
	assert.Equal(t, "postgres://granja:p%40ss%3Aword@db:5432/dairy?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro@host/x"
	assert.Equal(t, "postgres://otro@host/x", c.ConnectionString())
}
