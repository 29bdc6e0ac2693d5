package lrtable

import (
	"testing"

	"github.com/dekarrin/canonlr/internal/automaton"
	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, src, start string) Table {
	t.Helper()
	g, err := grammar.ParseGrammar(src, start)
	require.NoError(t, err)
	g = g.Augmented()
	fam, err := automaton.BuildFamily(g)
	require.NoError(t, err)
	tab, err := Build(fam, g)
	require.NoError(t, err)
	return tab
}

func TestBuild_AcceptOnAugmentedReduceAtEOF(t *testing.T) {
	tab := buildTable(t, "S -> a", "S")
	require.Greater(t, tab.Rows(), 0)

	var sawAccept bool
	for row := 0; row < tab.Rows(); row++ {
		actions, ok := tab.Actions(row)
		require.True(t, ok)
		for _, a := range actions {
			if a.Cell.Kind == ActionAccept {
				sawAccept = true
				assert.Equal(t, grammar.EOF.Ident(), a.Term.Ident())
			}
		}
	}
	assert.True(t, sawAccept, "table should contain an accept action")
	assert.False(t, tab.Conflict())
}

func TestBuild_ShiftsAndGotosAgree(t *testing.T) {
	tab := buildTable(t, "S -> A b\nA -> a", "S")
	aNT := grammar.NewNonTerminal("A")

	foundGoto := false
	for row := 0; row < tab.Rows(); row++ {
		if _, has, valid := tab.Goto(row, aNT); valid && has {
			foundGoto = true
		}
	}
	assert.True(t, foundGoto, "expected at least one GOTO edge on A")
}

func TestBuild_NoConflictOnUnambiguousGrammar(t *testing.T) {
	tab := buildTable(t, "program -> stmts\nstmts -> stmt stmts | stmt", "program")
	assert.False(t, tab.Conflict())
}

func TestActionCell_FlattenPreservesOrder(t *testing.T) {
	shift := ActionCell{Kind: ActionShift, Shift: 3}
	reduce := ActionCell{Kind: ActionReduce, Reduce: 1}

	merged, conflicted := shift.update(reduce)
	require.True(t, conflicted)
	require.True(t, merged.IsConflict())

	flat := merged.Flatten()
	require.Len(t, flat, 2)
	assert.Equal(t, ActionShift, flat[0].Kind)
	assert.Equal(t, ActionReduce, flat[1].Kind)
}

func TestActionCell_UpdateFromEmptyIsNotConflict(t *testing.T) {
	var empty ActionCell
	shift := ActionCell{Kind: ActionShift, Shift: 2}
	merged, conflicted := empty.update(shift)
	assert.False(t, conflicted)
	assert.Equal(t, ActionShift, merged.Kind)
}
