package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuxuan/evalagent/internal/config"
)

func TestMergedConfig_FlagsWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"username": "file-user",
		"strategy": "random",
		"delay_ms": 250
	}`), 0644))

	merged, err := mergedConfig(config.Config{Username: "flag-user"}, path)
	require.NoError(t, err)

	assert.Equal(t, "flag-user", merged.Username)
	assert.Equal(t, "random", merged.Strategy)
	assert.Equal(t, 250, merged.DelayMillis)
}

func TestMergedConfig_DefaultsApply(t *testing.T) {
	merged, err := mergedConfig(config.Config{}, "")
	require.NoError(t, err)

	assert.Equal(t, "best", merged.Strategy)
	assert.Equal(t, 1000, merged.DelayMillis)
}

func TestMergedConfig_InvalidStrategy(t *testing.T) {
	_, err := mergedConfig(config.Config{Strategy: "adequate"}, "")
	require.Error(t, err)
}

func TestMergedConfig_MissingFile(t *testing.T) {
	_, err := mergedConfig(config.Config{}, filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
