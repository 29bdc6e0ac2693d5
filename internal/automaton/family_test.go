package automaton

import (
	"testing"

	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrammar(t *testing.T, src, start string) grammar.Grammar {
	t.Helper()
	g, err := grammar.ParseGrammar(src, start)
	require.NoError(t, err)
	return g.Augmented()
}

func eofLookaheads() util.SVSet[grammar.Terminal] {
	s := util.NewSVSet[grammar.Terminal]()
	s.Set(grammar.EOF.Ident(), grammar.EOF)
	return s
}

func TestClosure_SimpleGrammar(t *testing.T) {
	g := mustGrammar(t, "program -> stmts\nstmts -> good", "program")
	i0, err := InitialItemSet(g)
	require.NoError(t, err)

	progPrime := grammar.NewNonTerminal("programprime")
	prog := grammar.NewNonTerminal("program")
	stmts := grammar.NewNonTerminal("stmts")

	wantCores := []grammar.Production{
		grammar.NewProduction(progPrime, []grammar.Token{grammar.TokenFromNonTerminal(prog)}),
		grammar.NewProduction(prog, []grammar.Token{grammar.TokenFromNonTerminal(stmts)}),
		grammar.NewProduction(stmts, []grammar.Token{grammar.TokenFromTerminal(grammar.NewTerminal("good"))}),
	}
	items := i0.Items()
	assert.Len(t, items, len(wantCores))
	for _, want := range wantCores {
		found := false
		for _, it := range items {
			if it.Prod().Equal(want) && it.Dot() == 0 {
				found = true
				assert.True(t, it.Lookaheads().Equal(eofLookaheads()))
			}
		}
		assert.Truef(t, found, "missing item for %s", want)
	}
}

func TestGoto_BasicTransitions(t *testing.T) {
	g := mustGrammar(t, "S -> E\nE -> a", "S")
	i0, err := InitialItemSet(g)
	require.NoError(t, err)

	sNT := grammar.NewNonTerminal("S")
	eNT := grammar.NewNonTerminal("E")
	aTerm := grammar.NewTerminal("a")

	nextS, ok, err := i0.Goto(grammar.TokenFromNonTerminal(sNT))
	require.NoError(t, err)
	require.True(t, ok)
	items := nextS.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Dot())

	nextE, ok, err := i0.Goto(grammar.TokenFromNonTerminal(eNT))
	require.NoError(t, err)
	require.True(t, ok)
	items = nextE.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Dot())

	nextA, ok, err := i0.Goto(grammar.TokenFromTerminal(aTerm))
	require.NoError(t, err)
	require.True(t, ok)
	items = nextA.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Dot())
}

func TestGoto_PreservesLookahead(t *testing.T) {
	g := mustGrammar(t, "S -> A b\nA -> a", "S")
	i0, err := InitialItemSet(g)
	require.NoError(t, err)

	aNT := grammar.NewNonTerminal("A")
	aTerm := grammar.NewTerminal("a")
	bTerm := grammar.NewTerminal("b")

	var found bool
	for _, it := range i0.Items() {
		if it.Prod().Head().Equal(aNT) && it.Dot() == 0 {
			found = true
			assert.True(t, it.Lookaheads().Has(bTerm.Ident()))
		}
	}
	assert.True(t, found, "I0 should contain A -> . a {b}")

	next, ok, err := i0.Goto(grammar.TokenFromTerminal(aTerm))
	require.NoError(t, err)
	require.True(t, ok)
	items := next.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].Lookaheads().Has(bTerm.Ident()))
	assert.False(t, items[0].Lookaheads().Has(grammar.EOF.Ident()))
}

func TestBuildFamily_StateCount(t *testing.T) {
	g := mustGrammar(t, "program -> stmts\nstmts -> stmt stmts | stmt", "program")
	family, err := BuildFamily(g)
	require.NoError(t, err)
	assert.Equal(t, 5, family.Len())

	// I0 has the four initial items (augmented start, program, and both
	// stmts alternatives with the dot at position 0).
	i0 := family.ItemSets()[0]
	assert.Len(t, i0.Items(), 4)

	edges, ok := family.GotosOf(0)
	require.True(t, ok)
	assert.NotEmpty(t, edges)
}

// complexCFG is the statement/expression grammar the Rust original's
// family_of_complex_cfg test builds its canonical collection from. Its
// start symbol, program, already has exactly one production, so the
// family below is built straight from ParseGrammar's output without a
// separate Augmented() call, matching the original test exactly.
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

func TestBuildFamily_GotosOfComplexCFG(t *testing.T) {
	g, err := grammar.ParseGrammar(complexCFG, "program")
	require.NoError(t, err)

	family, err := BuildFamily(g)
	require.NoError(t, err)

	edges, ok := family.GotosOf(42)
	require.True(t, ok)

	got := make(map[string]int, len(edges))
	for _, e := range edges {
		got[e.Tok.Ident()] = e.To
	}

	want := map[string]int{
		"(":          20,
		"ID":         21,
		"NUM":        22,
		"multexpr":   71,
		"simpleexpr": 25,
	}
	assert.Equal(t, want, got)
}

func TestItemSet_ReducesOnEpsilonProduction(t *testing.T) {
	prod := grammar.NewProduction(grammar.NewNonTerminal("head"), []grammar.Token{grammar.TokenFromTerminal(grammar.Epsilon)})
	item := InitialItem(prod, eofLookaheads())
	_, expectsMore := item.Goto(grammar.TokenFromTerminal(grammar.Epsilon))
	assert.False(t, expectsMore)
	las, reduces := item.Reduces()
	assert.True(t, reduces)
	assert.True(t, las.Has(grammar.EOF.Ident()))
}
