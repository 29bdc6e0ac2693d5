package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canonlr.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[grammar]
file = "arith.cfg"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "arith.cfg", cfg.Grammar.File)
	assert.Equal(t, "start", cfg.Grammar.Start)
	assert.Equal(t, "canonlr.table.cache", cfg.Cache.File)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
