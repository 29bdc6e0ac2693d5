package driver

import (
	"testing"

	"github.com/dekarrin/canonlr/internal/automaton"
	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/lrtable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, src, start string) lrtable.Table {
	t.Helper()
	g, err := grammar.ParseGrammar(src, start)
	require.NoError(t, err)
	g = g.Augmented()
	fam, err := automaton.BuildFamily(g)
	require.NoError(t, err)
	tab, err := lrtable.Build(fam, g)
	require.NoError(t, err)
	return tab
}

func terms(words ...string) []InputTerm {
	out := make([]InputTerm, len(words))
	for i, w := range words {
		out[i] = InputTerm{Line: 1, Term: grammar.NewTerminal(w)}
	}
	return out
}

func TestRun_AcceptsWellFormedInput(t *testing.T) {
	tab := buildTable(t, "S -> A b\nA -> a", "S")
	result, err := Run(tab, terms("a", "b"))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Empty(t, result.Corrections)
	assert.NotEmpty(t, result.Derivation())
}

func TestRun_RecoversMissingTerminal(t *testing.T) {
	tab := buildTable(t, "S -> A b\nA -> a", "S")
	// missing the "b" that S -> A b requires
	result, err := Run(tab, terms("a"))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	require.Len(t, result.Corrections, 1)
	assert.Equal(t, "b", result.Corrections[0].Skipped.Ident())
}

func TestRun_RightRecursiveRepeatedStatements(t *testing.T) {
	tab := buildTable(t, "program -> stmts\nstmts -> stmt stmts | stmt", "program")
	result, err := Run(tab, terms("stmt", "stmt", "stmt"))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

// complexCFG is the statement/expression grammar the Rust original's
// rightmost-derivation example drives, reused here for the scenario that
// exercises panic-mode recovery end to end.
const complexCFG = `program -> compoundstmt
stmt -> ifstmt | whilestmt | assgstmt | compoundstmt
compoundstmt -> { stmts }
stmts -> stmt stmts | E
ifstmt -> if ( boolexpr ) then stmt else stmt
whilestmt -> while ( boolexpr ) stmt
assgstmt -> ID = arithexpr ;
boolexpr -> arithexpr boolop arithexpr
boolop -> < | > | <= | >= | ==
arithexpr -> multexpr arithexprprime
arithexprprime -> + multexpr arithexprprime | - multexpr arithexprprime | E
multexpr -> simpleexpr multexprprime
multexprprime -> * simpleexpr multexprprime | / simpleexpr multexprprime | E
simpleexpr -> ID | NUM | ( arithexpr )
`

func TestRun_RecoversMissingSemicolonInComplexGrammar(t *testing.T) {
	tab := buildTable(t, complexCFG, "program")
	require.False(t, tab.Conflict())

	// Mirrors the Rust original's recovery-scenario program, missing the
	// ";" after "ID = NUM" on line 4.
	input := []InputTerm{
		{Line: 1, Term: grammar.NewTerminal("{")},
		{Line: 2, Term: grammar.NewTerminal("while")},
		{Line: 2, Term: grammar.NewTerminal("(")},
		{Line: 2, Term: grammar.NewTerminal("ID")},
		{Line: 2, Term: grammar.NewTerminal("==")},
		{Line: 2, Term: grammar.NewTerminal("NUM")},
		{Line: 2, Term: grammar.NewTerminal(")")},
		{Line: 3, Term: grammar.NewTerminal("{")},
		{Line: 4, Term: grammar.NewTerminal("ID")},
		{Line: 4, Term: grammar.NewTerminal("=")},
		{Line: 4, Term: grammar.NewTerminal("NUM")},
		{Line: 5, Term: grammar.NewTerminal("}")},
		{Line: 6, Term: grammar.NewTerminal("}")},
	}

	result, err := Run(tab, input)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	require.Len(t, result.Corrections, 1)
	assert.Equal(t, ";", result.Corrections[0].Skipped.Ident())
	assert.Equal(t, 5, result.Corrections[0].Line)
	assert.NotEmpty(t, result.Derivation())
}
