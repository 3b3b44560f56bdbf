package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	c := DefaultConfig()
	c.Format = "json"
	c.Level = "debug"
	c.Stderr = &buf

	logger, err := c.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("codec", "vp8").Debug("converted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "converted", entry["msg"])
	assert.Equal(t, "vp8", entry["codec"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewLoggerTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	c := DefaultConfig()
	c.Level = "warn"
	c.Stderr = &buf

	logger, err := c.NewLogger()
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewLoggerErrors(t *testing.T) {
	c := DefaultConfig()
	c.Level = "loud"
	_, err := c.NewLogger()
	assert.Error(t, err)

	c = DefaultConfig()
	c.Format = "xml"
	_, err = c.NewLogger()
	assert.Error(t, err)
}

func TestNewLoggerFile(t *testing.T) {
	dir := t.TempDir()
	c := DefaultConfig()
	c.File = filepath.Join(dir, "wcbridge.log")

	logger, err := c.NewLogger()
	require.NoError(t, err)
	logger.Info("to file")

	data, err := os.ReadFile(c.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
