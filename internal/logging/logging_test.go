package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fivetwenty-io/ptero/internal/logging"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ptero.Logger = (*logging.Logger)(nil)

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Options{Name: "ptero", Level: "warn", Output: &buf})

	logger.Debug("hidden", nil)
	logger.Info("hidden too", nil)
	logger.Warn("panel returned an error", map[string]interface{}{"status_code": 404, "path": "/api/client"})
	logger.Error("boom", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]  ptero: panel returned an error: path=/api/client status_code=404")
	assert.Contains(t, out, "[ERROR] ptero: boom")
}

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Options{Level: "debug", JSON: true, Output: &buf})
	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})

	line := strings.TrimSpace(buf.String())

	var entry map[string]interface{}

	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "HTTP Request", entry["@message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "debug", entry["@level"])
}

func TestLogger_DefaultLevelAndDiscard(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Options{Level: "nonsense", Output: &buf})
	logger.Debug("dropped", nil)
	logger.Info("kept", nil)

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")

	logging.Discard().Error("nothing", map[string]interface{}{"a": 1})
	assert.NotNil(t, logging.Wrap(nil).HCLog())
}
