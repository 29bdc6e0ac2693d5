package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tok(ident string, isNonTerm bool) Token {
	if isNonTerm {
		return TokenFromNonTerminal(NewNonTerminal(ident))
	}
	return TokenFromTerminal(NewTerminal(ident))
}

func TestParseGrammar_ProductionsAndTokens(t *testing.T) {
	input := `
		program -> compoundstmt
		stmt -> ifstmt | whilestmt | assgstmt
		compoundstmt -> { stmts }
	`
	g, err := ParseGrammar(input, "program")
	assert.NoError(t, err)
	g = g.Augmented()

	assert.Equal(t, NewNonTerminal("programprime"), g.StartSymbol())

	wantProds := []Production{
		NewProduction(NewNonTerminal("programprime"), []Token{tok("program", true)}),
		NewProduction(NewNonTerminal("program"), []Token{tok("compoundstmt", true)}),
		NewProduction(NewNonTerminal("stmt"), []Token{tok("ifstmt", false)}),
		NewProduction(NewNonTerminal("stmt"), []Token{tok("whilestmt", false)}),
		NewProduction(NewNonTerminal("stmt"), []Token{tok("assgstmt", false)}),
		NewProduction(NewNonTerminal("compoundstmt"), []Token{tok("{", false), tok("stmts", false), tok("}", false)}),
	}
	got := g.Prods()
	assert.Len(t, got, len(wantProds))
	for i := range wantProds {
		assert.Truef(t, wantProds[i].Equal(got[i]), "prod %d: want %s, got %s", i, wantProds[i], got[i])
	}

	parsed, err := g.ParseProduction("S -> a b c")
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(NewProduction(NewNonTerminal("S"), []Token{tok("a", false), tok("b", false), tok("c", false)})))

	_, err = g.ParseProduction("ifstmt -> a")
	assert.Error(t, err)
	cause, ok := ParseCauseOf(err)
	assert.True(t, ok)
	assert.Equal(t, CauseTokenTypeMismatch, cause)
}

func TestParseGrammar_StartSymbolMissing(t *testing.T) {
	_, err := ParseGrammar("a -> b", "nonexistent")
	assert.Error(t, err)
	cause, ok := ParseCauseOf(err)
	assert.True(t, ok)
	assert.Equal(t, CauseStartSymbolNotFound, cause)
}

func TestFirstSet_LeftRecursive(t *testing.T) {
	g, err := ParseGrammar("program -> stmts\nstmts -> { stmt stmts } | stmt | E | program", "program")
	assert.NoError(t, err)
	g = g.Augmented()

	stmts := NewNonTerminal("stmts")
	programprime := NewNonTerminal("programprime")
	braceL := NewTerminal("{")
	stmt := NewTerminal("stmt")

	first, err := g.FirstOfSequence([]Token{TokenFromNonTerminal(stmts)})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{braceL.ident, stmt.ident, Epsilon.ident}, first.Elements())

	first, err = g.FirstOfSequence([]Token{TokenFromNonTerminal(programprime)})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{braceL.ident, stmt.ident, Epsilon.ident}, first.Elements())
}

func TestFirstWithFallthrough(t *testing.T) {
	g, err := ParseGrammar("S -> A b\nA -> a | E", "S")
	assert.NoError(t, err)
	g = g.Augmented()

	a := NewNonTerminal("A")
	lookaheads := make(map[string]Terminal)
	lookaheads[EOF.ident] = EOF

	fs, err := g.FirstWithFallthrough([]Token{TokenFromNonTerminal(a)}, lookaheads)
	assert.NoError(t, err)
	assert.True(t, fs.Has("a"))
	assert.True(t, fs.Has(EOF.ident))
	assert.False(t, fs.Has(Epsilon.ident))
}
