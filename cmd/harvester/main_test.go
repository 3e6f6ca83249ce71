package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_UnknownFlag(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-no-such-flag"}))
}

func TestRun_MissingConfig(t *testing.T) {
	assert.Equal(t, 1, run([]string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}))
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unterminated"), 0o600))

	assert.Equal(t, 1, run([]string{"-config", path}))
}
