package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaders(t *testing.T) {
	t.Setenv("CFG_STRING", "x")
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_BAD_INT", "forty")
	t.Setenv("CFG_DURATION", "250ms")
	t.Setenv("CFG_BOOL", "true")
	t.Setenv("CFG_LIST", "a, b,,c ")

	assert.Equal(t, "x", String("CFG_STRING", "def"))
	assert.Equal(t, "def", String("CFG_UNSET", "def"))
	assert.Equal(t, 42, Int("CFG_INT", 1))
	assert.Equal(t, 1, Int("CFG_BAD_INT", 1))
	assert.Equal(t, 250*time.Millisecond, Duration("CFG_DURATION", time.Second))
	assert.Equal(t, time.Second, Duration("CFG_UNSET", time.Second))
	assert.True(t, Bool("CFG_BOOL", false))
	assert.True(t, Bool("CFG_UNSET", true))
	assert.Equal(t, []string{"a", "b", "c"}, List("CFG_LIST", nil))
	assert.Equal(t, []string{"d"}, List("CFG_UNSET", []string{"d"}))
}

func TestLoadDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_FROM_FILE=file\nCFG_PRESET=file\n"), 0o600))
	t.Setenv("CFG_PRESET", "env")
	t.Setenv("CFG_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("CFG_FROM_FILE"))

	Load(path)
	t.Cleanup(func() { _ = os.Unsetenv("CFG_FROM_FILE") })

	assert.Equal(t, "file", String("CFG_FROM_FILE", ""))
	assert.Equal(t, "env", String("CFG_PRESET", ""))
}
