package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dairy-ledger/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Service: "dairy-ledger", Output: &buf})

	log.Component("ledger").ForItem("farm-a", "item-1").Debug().Str("quantity", "8").Msg("consumo registrado")

	line := decodeLine(t, &buf)
	assert.Equal(t, "dairy-ledger", line["service"])
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "farm-a", line["farm_id"])
	assert.Equal(t, "item-1", line["item_id"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "consumo registrado", line["message"])
}

func TestNew_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "ruidoso", Output: &buf})

	log.Debug().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Info().Msg("sí sale")
	assert.Equal(t, "info", decodeLine(t, &buf)["level"])
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() {
		log.Component("kafka").Error().Msg("descartado")
	})
}
