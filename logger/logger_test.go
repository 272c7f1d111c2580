package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", "json", &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "api").Msg("listening")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "listening", line["message"])
	assert.Equal(t, "api", line["component"])
	assert.Equal(t, "phishguard", line["service"])
	assert.Contains(t, line, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "console", &buf)
	require.NoError(t, err)

	log.Debug().Msg("lookup failed")
	assert.Contains(t, buf.String(), "lookup failed")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}
