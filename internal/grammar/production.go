package grammar

import "strings"

// Production is a single CFG rule: head -> tail. Alternatives separated by
// "|" in CFG source text become distinct Productions sharing the same head.
type Production struct {
	head NonTerminal
	tail []Token
}

// NewProduction builds a Production from its head and tail tokens. tail may
// contain Epsilon to denote an empty-deriving alternative; it must then be
// the tail's only token, matching how CFG source text writes it.
func NewProduction(head NonTerminal, tail []Token) Production {
	tailCopy := make([]Token, len(tail))
	copy(tailCopy, tail)
	return Production{head: head, tail: tailCopy}
}

// Head returns the production's left-hand non-terminal.
func (p Production) Head() NonTerminal { return p.head }

// Tail returns the production's right-hand token sequence, including any
// Epsilon terminal.
func (p Production) Tail() []Token {
	out := make([]Token, len(p.tail))
	copy(out, p.tail)
	return out
}

// TailWithoutEpsilon returns the tail with any Epsilon terminal filtered out.
// An epsilon-only production therefore yields an empty slice.
func (p Production) TailWithoutEpsilon() []Token {
	out := make([]Token, 0, len(p.tail))
	for _, tok := range p.tail {
		if t, ok := tok.AsTerminal(); ok && t.ident == Epsilon.ident {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Len returns the number of tokens in the tail, not counting Epsilon.
func (p Production) Len() int {
	return len(p.TailWithoutEpsilon())
}

// IsEmpty reports whether the production derives the empty string.
func (p Production) IsEmpty() bool {
	return p.Len() == 0
}

// Equal reports whether p and o have the same head and tail.
func (p Production) Equal(o Production) bool {
	if !p.head.Equal(o.head) {
		return false
	}
	if len(p.tail) != len(o.tail) {
		return false
	}
	for i := range p.tail {
		if !p.tail[i].Equal(o.tail[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether nt and o share an identifier.
func (nt NonTerminal) Equal(o NonTerminal) bool { return nt.ident == o.ident }

// Equal reports whether t and o share an identifier.
func (t Terminal) Equal(o Terminal) bool { return t.ident == o.ident }

func (p Production) String() string {
	var sb strings.Builder
	sb.WriteString(p.head.String())
	sb.WriteString(" -> ")
	parts := make([]string, len(p.tail))
	for i, tok := range p.tail {
		parts[i] = tok.String()
	}
	sb.WriteString(strings.Join(parts, " "))
	return sb.String()
}

// key is the canonical string used to dedup and index productions within a
// Grammar. It's identical to String but kept as its own function so callers
// cannot accidentally rely on index_of semantics tracking display formatting.
func (p Production) key() string {
	return p.String()
}
