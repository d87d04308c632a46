package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestConfigureWritesServiceAndComponent(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	lgr := Configure(Config{Level: "debug", Format: FormatJSON, Service: "uniportal", Output: &buf})
	component := Component(lgr, "reconciler")
	component.Debug().Msg("checked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "uniportal", entry["service"])
	assert.Equal(t, "reconciler", entry["component"])
	assert.Equal(t, "checked", entry["message"])
}

func TestConfigureRespectsLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	lgr := Configure(Config{Level: "error", Output: &buf})
	lgr.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
}
