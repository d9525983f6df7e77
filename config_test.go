package pomotodo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("POMOTODO_BOT_TOKEN", "")
	_, err := LoadConfig(false)
	assert.ErrorContains(t, err, "POMOTODO_BOT_TOKEN")

	t.Setenv("POMOTODO_BOT_TOKEN", "token")
	t.Setenv("POMOTODO_BOT_NAME", "")
	t.Setenv("POMOTODO_DB_PATH", "")
	t.Setenv("POMOTODO_HTTP_ADDR", ":8080")
	cfg, err := LoadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "Pomotodo", cfg.BotName)
	assert.Equal(t, "pomotodo.db", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}
