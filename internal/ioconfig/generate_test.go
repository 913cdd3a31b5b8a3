package ioconfig_test

import (
	"os"
	"strings"
	"testing"

	"github.com/emso-eric/metadata-harmonizer/internal/ioconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	exists, err := ioconfig.ConfigFileExists()
	require.NoError(t, err)
	assert.False(t, exists)

	path, err := ioconfig.GenerateDefaultConfig()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "emh.yaml"))

	exists, err = ioconfig.ConfigFileExists()
	require.NoError(t, err)
	assert.True(t, exists)

	// the generated file loads back cleanly
	res, err := ioconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", res.Source)

	// never overwrite an existing file
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))
	_, err = ioconfig.GenerateDefaultConfig()
	assert.Error(t, err)

	res, err = ioconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", res.Config.Log.Level)
}
