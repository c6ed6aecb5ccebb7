package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToOutput(t *testing.T) {
	t.Setenv("DEBUG", "")
	var buf bytes.Buffer
	log, closer, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	log.Info("hidden")
	log.WithField("component", "poller").Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=poller")
}

func TestNew_File(t *testing.T) {
	t.Setenv("DEBUG", "")
	path := filepath.Join(t.TempDir(), "nested", "minerdeck.log")
	log, closer, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	log.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Setenv("DEBUG", "")
	_, closer, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
	assert.NotNil(t, closer)
}

func TestParseLevel_DebugEnvWins(t *testing.T) {
	t.Setenv("DEBUG", "1")
	level, err := parseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, level)
}
