package grammar

import "fmt"

// Terminal is a leaf symbol of the grammar: something the tokenizer produces
// and the parser consumes directly, never expanded by a production.
type Terminal struct {
	ident string
}

// NewTerminal builds a Terminal from its textual identifier. Callers outside
// this package will almost always get Terminal values back from Grammar
// methods instead of constructing them directly, but NewTerminal is exported
// for collaborators (demo tokenizers, CLI flag parsing) that need to build one
// from raw text.
func NewTerminal(ident string) Terminal {
	return Terminal{ident: ident}
}

func (t Terminal) String() string { return t.ident }

// Ident returns the terminal's textual identifier.
func (t Terminal) Ident() string { return t.ident }

// Epsilon is the empty-string terminal, written "E" in CFG source text. A
// production tail containing only Epsilon derives the empty string.
var Epsilon = Terminal{ident: "E"}

// EOF is the end-of-input marker terminal. It is never present in CFG source
// text; Grammar adds it automatically and the driver appends it to the end
// of every token stream.
var EOF = Terminal{ident: "eof"}

// NonTerminal is a symbol that appears as the head of at least one
// production and is expanded during parsing.
type NonTerminal struct {
	ident string
}

// NewNonTerminal builds a NonTerminal from its textual identifier.
func NewNonTerminal(ident string) NonTerminal {
	return NonTerminal{ident: ident}
}

func (nt NonTerminal) String() string { return nt.ident }

// Ident returns the non-terminal's textual identifier.
func (nt NonTerminal) Ident() string { return nt.ident }

// Token is either a Terminal or a NonTerminal. Productions are sequences of
// Tokens; FIRST sets and lookaheads only ever contain Terminals.
type Token struct {
	term    Terminal
	nonTerm NonTerminal
	isTerm  bool
}

// TokenFromTerminal wraps a Terminal as a Token.
func TokenFromTerminal(t Terminal) Token {
	return Token{term: t, isTerm: true}
}

// TokenFromNonTerminal wraps a NonTerminal as a Token.
func TokenFromNonTerminal(nt NonTerminal) Token {
	return Token{nonTerm: nt, isTerm: false}
}

// IsTerminal reports whether the token wraps a Terminal.
func (t Token) IsTerminal() bool { return t.isTerm }

// AsTerminal returns the wrapped Terminal and true, or the zero Terminal and
// false if the token wraps a NonTerminal instead.
func (t Token) AsTerminal() (Terminal, bool) {
	if !t.isTerm {
		return Terminal{}, false
	}
	return t.term, true
}

// AsNonTerminal returns the wrapped NonTerminal and true, or the zero
// NonTerminal and false if the token wraps a Terminal instead.
func (t Token) AsNonTerminal() (NonTerminal, bool) {
	if t.isTerm {
		return NonTerminal{}, false
	}
	return t.nonTerm, true
}

// Ident returns the textual identifier of whichever symbol is wrapped.
func (t Token) Ident() string {
	if t.isTerm {
		return t.term.ident
	}
	return t.nonTerm.ident
}

func (t Token) String() string {
	return t.Ident()
}

// Equal reports whether t and o wrap the same kind of symbol with the same
// identifier.
func (t Token) Equal(o Token) bool {
	return t.isTerm == o.isTerm && t.Ident() == o.Ident()
}

// terminalRank orders EOF and Epsilon after ordinary terminals, matching the
// total order described for the symbol table: ordinary terminals first
// (shorter identifiers before longer, lexicographic among equal lengths),
// then Epsilon, then EOF.
func terminalRank(t Terminal) int {
	switch t.ident {
	case Epsilon.ident:
		return 1
	case EOF.ident:
		return 2
	default:
		return 0
	}
}

// CompareTerminals implements the terminal total order used for deterministic
// state numbering and ACTION-table column ordering.
func CompareTerminals(a, b Terminal) int {
	ra, rb := terminalRank(a), terminalRank(b)
	if ra != rb {
		return ra - rb
	}
	if ra != 0 {
		return 0 // both are the same sentinel
	}
	if len(a.ident) != len(b.ident) {
		return len(a.ident) - len(b.ident)
	}
	switch {
	case a.ident < b.ident:
		return -1
	case a.ident > b.ident:
		return 1
	default:
		return 0
	}
}

// CompareNonTerminals orders non-terminals lexicographically by identifier.
func CompareNonTerminals(a, b NonTerminal) int {
	switch {
	case a.ident < b.ident:
		return -1
	case a.ident > b.ident:
		return 1
	default:
		return 0
	}
}

// CompareTokens implements the token total order: every terminal sorts
// before every non-terminal, and within each category the respective symbol
// order applies. This is the order the canonical-collection construction
// walks the token set in, which is what makes state numbering deterministic.
func CompareTokens(a, b Token) int {
	if a.isTerm != b.isTerm {
		if a.isTerm {
			return -1
		}
		return 1
	}
	if a.isTerm {
		return CompareTerminals(a.term, b.term)
	}
	return CompareNonTerminals(a.nonTerm, b.nonTerm)
}

// GoString supports "%#v"-style debug printing in test failure diffs.
func (t Token) GoString() string {
	kind := "NonTerminal"
	if t.isTerm {
		kind = "Terminal"
	}
	return fmt.Sprintf("Token{%s %q}", kind, t.Ident())
}
