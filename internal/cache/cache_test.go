package cache

import (
	"path/filepath"
	"testing"

	"github.com/dekarrin/canonlr/internal/automaton"
	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/lrtable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T) lrtable.Table {
	t.Helper()
	g, err := grammar.ParseGrammar("S -> A b\nA -> a", "S")
	require.NoError(t, err)
	g = g.Augmented()
	fam, err := automaton.BuildFamily(g)
	require.NoError(t, err)
	tab, err := lrtable.Build(fam, g)
	require.NoError(t, err)
	return tab
}

func TestSnapshot_RoundTripsThroughEncoding(t *testing.T) {
	tab := buildTable(t)
	snap := FromTable(tab)

	data := Encode(snap)
	require.NotEmpty(t, data)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)
}

func TestSaveAndLoadFile(t *testing.T) {
	tab := buildTable(t)
	path := filepath.Join(t.TempDir(), "table.bin")

	require.NoError(t, SaveFile(path, tab))
	decoded, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, FromTable(tab), decoded)
}
