package render

import (
	"strings"
	"testing"

	"github.com/dekarrin/canonlr/internal/automaton"
	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/lrtable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T) lrtable.Table {
	t.Helper()
	g, err := grammar.ParseGrammar("S -> a", "S")
	require.NoError(t, err)
	g = g.Augmented()
	fam, err := automaton.BuildFamily(g)
	require.NoError(t, err)
	tab, err := lrtable.Build(fam, g)
	require.NoError(t, err)
	return tab
}

func TestMarkdown_HeaderAndSeparatorShape(t *testing.T) {
	tab := buildTable(t)
	md := Markdown(tab)
	lines := strings.Split(md, "\n")
	require.GreaterOrEqual(t, len(lines), 3)

	assert.True(t, strings.HasPrefix(lines[0], "| |"))
	assert.Contains(t, lines[0], "`a`")
	assert.Contains(t, lines[0], "`eof`")

	assert.True(t, strings.HasPrefix(lines[1], "| - |"))

	for _, row := range lines[2:] {
		assert.Regexp(t, `^\| \$I_\{\d+\}\$ \|`, row)
	}
}

func TestPretty_ContainsStateColumn(t *testing.T) {
	tab := buildTable(t)
	out := Pretty(tab)
	assert.Contains(t, out, "state")
	assert.Contains(t, out, "I0")
}
