package logging

import (
	"os"
	"path/filepath"
	"testing"

	"tableflow/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tableflow.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1, Service: "tableflow-test"})
	t.Cleanup(func() { Init(config.LogConfig{Level: "info"}) })

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	log.Info().Str("table", "3301").Msg("table opened")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"table":"3301"`)
	assert.Contains(t, string(b), `"service":"tableflow-test"`)
}

func TestInitFallsBackOnBadLevel(t *testing.T) {
	Init(config.LogConfig{Level: "loud"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
