// Package automaton builds the canonical LR(1) item sets and the canonical
// collection ("family") of states derived from a Grammar.
package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/util"
)

// Item is a canonical LR(1) item: a production with a dot position marking
// how much of it has been recognized, plus a lookahead set of terminals
// valid after a reduction by this item.
type Item struct {
	prod       grammar.Production
	dot        int
	lookaheads util.SVSet[grammar.Terminal]
}

// NewItem builds an Item with an explicit dot position.
func NewItem(prod grammar.Production, dot int, lookaheads util.SVSet[grammar.Terminal]) Item {
	return Item{prod: prod, dot: dot, lookaheads: lookaheads.Copy()}
}

// InitialItem builds an Item with the dot at the start of the production.
func InitialItem(prod grammar.Production, lookaheads util.SVSet[grammar.Terminal]) Item {
	return NewItem(prod, 0, lookaheads)
}

func (it Item) withDot(dot int) Item {
	return Item{prod: it.prod, dot: dot, lookaheads: it.lookaheads}
}

// Prod returns the item's production.
func (it Item) Prod() grammar.Production { return it.prod }

// Dot returns the item's dot position (an index into the production's tail,
// ignoring Epsilon).
func (it Item) Dot() int { return it.dot }

// Lookaheads returns the item's lookahead set.
func (it Item) Lookaheads() util.SVSet[grammar.Terminal] { return it.lookaheads.Copy() }

// futureSeq returns the tokens strictly after the expected token, used to
// compute the lookahead a closure should propagate into the productions it
// introduces.
func (it Item) futureSeq() []grammar.Token {
	tail := it.prod.TailWithoutEpsilon()
	if it.dot+1 >= len(tail) {
		return nil
	}
	return tail[it.dot+1:]
}

// expected returns the token immediately after the dot, or false if the dot
// is at the end of the production.
func (it Item) expected() (grammar.Token, bool) {
	tail := it.prod.TailWithoutEpsilon()
	if it.dot >= len(tail) {
		return grammar.Token{}, false
	}
	return tail[it.dot], true
}

// Expected returns the token immediately after the dot, or false if the dot
// is at the end of the production. Panic-mode recovery uses this to decide
// whether an item can participate in a synthesized shift.
func (it Item) Expected() (grammar.Token, bool) {
	return it.expected()
}

// FutureSeq returns the tokens strictly after the expected token. Panic-mode
// recovery feeds this into Grammar.FirstWithFallthrough to decide whether a
// synthesized shift is consistent with an item's follow context.
func (it Item) FutureSeq() []grammar.Token {
	return it.futureSeq()
}

// Goto advances the dot past token if token is what this item expects next.
func (it Item) Goto(token grammar.Token) (Item, bool) {
	expected, ok := it.expected()
	if !ok || !expected.Equal(token) {
		return Item{}, false
	}
	return it.withDot(it.dot + 1), true
}

// WithDotAdvanced unconditionally advances the dot by one position, without
// checking what the item expects. Panic-mode recovery uses this to probe
// what the parser would look like immediately after hypothetically shifting
// past a missing terminal.
func (it Item) WithDotAdvanced() Item {
	return it.withDot(it.dot + 1)
}

// Reduces reports whether the item is in final position (dot at the end of
// the production) and, if so, returns its lookahead set.
func (it Item) Reduces() (util.SVSet[grammar.Terminal], bool) {
	if _, ok := it.expected(); ok {
		return nil, false
	}
	return it.lookaheads, true
}

// core identifies the item ignoring its lookahead set: items that differ
// only in lookahead share a core and are merged together by ItemSet closure.
func (it Item) core() string {
	return fmt.Sprintf("%s\x00%d", it.prod.String(), it.dot)
}

// key fully identifies the item, including its lookahead set. It is used to
// deduplicate items during the closure fixpoint, before cores are merged.
func (it Item) key() string {
	las := it.lookaheads.Elements()
	sort.Strings(las)
	return fmt.Sprintf("%s\x00%s", it.core(), strings.Join(las, ","))
}

func (it Item) String() string {
	tail := it.prod.TailWithoutEpsilon()
	parts := make([]string, 0, len(tail)+1)
	for i, tok := range tail {
		if i == it.dot {
			parts = append(parts, ".")
		}
		parts = append(parts, tok.String())
	}
	if it.dot == len(tail) {
		parts = append(parts, ".")
	}
	las := it.lookaheads.Elements()
	sort.Slice(las, func(i, j int) bool {
		return grammar.CompareTerminals(it.lookaheads[las[i]], it.lookaheads[las[j]]) < 0
	})
	return fmt.Sprintf("%s -> %s <%s>", it.prod.Head(), strings.Join(parts, " "), strings.Join(las, ", "))
}
