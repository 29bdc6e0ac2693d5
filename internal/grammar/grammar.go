// Package grammar holds the context-free grammar representation: terminals,
// non-terminals, productions, and the left-recursion-tolerant FIRST-set
// fixpoint that the automaton and table packages build on.
package grammar

import (
	"sort"
	"strings"

	"github.com/dekarrin/canonlr/internal/util"
)

type firstState int

const (
	firstNotComputed firstState = iota
	firstInProgress
	firstComputed
)

type firstEntry struct {
	state firstState
	set   util.SVSet[Terminal]
}

// Grammar is a parsed, possibly-augmented context-free grammar. It is built
// once by ParseGrammar and optionally transformed once more by Augmented,
// which returns a new value rather than mutating in place.
//
// The FIRST-set cache (firstSets) is a map, which in Go already has
// reference semantics: copying a Grammar value copies the map header, not
// its contents, so every copy observes the same cache entries. That mirrors
// how the cache is threaded through this package's recursive FIRST
// computation without needing a pointer receiver on every method.
type Grammar struct {
	prods     []Production
	prodIndex map[string]int
	tokens    []Token
	tokenSet  map[string]Token
	start     NonTerminal
	firstSets map[string]*firstEntry
}

// ParseGrammar parses CFG source text into a Grammar. Each non-blank line
// must contain exactly one "->"; the left side is the production head and
// the right side is one or more "|"-separated alternatives, each a
// whitespace-separated sequence of symbol identifiers. Any identifier that
// never appears as a head is classified as a terminal.
//
// startIdent must appear as the head of at least one production.
func ParseGrammar(src string, startIdent string) (Grammar, error) {
	nonTerminals := util.NewStringSet()

	type headTail struct {
		head     string
		tailText string
	}
	var splitted []headTail

	for lineNum, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.Index(line, "->")
		if idx < 0 {
			return Grammar{}, ParseProduction(lineNum, CauseNoArrow)
		}
		headIdent := strings.TrimSpace(line[:idx])
		splitted = append(splitted, headTail{head: headIdent, tailText: line[idx+2:]})
		nonTerminals.Add(headIdent)
	}

	if !nonTerminals.Has(startIdent) {
		return Grammar{}, ParseProduction(0, CauseStartSymbolNotFound)
	}

	tokenSet := map[string]Token{
		Epsilon.ident: TokenFromTerminal(Epsilon),
		EOF.ident:     TokenFromTerminal(EOF),
	}
	for _, ident := range nonTerminals.Elements() {
		tokenSet[ident] = TokenFromNonTerminal(NewNonTerminal(ident))
	}

	var prods []Production
	prodIndex := map[string]int{}
	for _, st := range splitted {
		for _, altText := range strings.Split(st.tailText, "|") {
			fields := strings.Fields(altText)
			tail := make([]Token, 0, len(fields))
			for _, f := range fields {
				var tok Token
				if nonTerminals.Has(f) {
					tok = TokenFromNonTerminal(NewNonTerminal(f))
				} else {
					tok = TokenFromTerminal(NewTerminal(f))
				}
				tokenSet[f] = tok
				tail = append(tail, tok)
			}
			prod := NewProduction(NewNonTerminal(st.head), tail)
			if _, exists := prodIndex[prod.key()]; !exists {
				prodIndex[prod.key()] = len(prods)
				prods = append(prods, prod)
			}
		}
	}

	tokens := make([]Token, 0, len(tokenSet))
	for _, tok := range tokenSet {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool { return CompareTokens(tokens[i], tokens[j]) < 0 })

	firstSets := map[string]*firstEntry{}
	for _, ident := range nonTerminals.Elements() {
		firstSets[ident] = &firstEntry{state: firstNotComputed}
	}

	return Grammar{
		prods:     prods,
		prodIndex: prodIndex,
		tokens:    tokens,
		tokenSet:  tokenSet,
		start:     NewNonTerminal(startIdent),
		firstSets: firstSets,
	}, nil
}

// Augmented returns a new Grammar with a fresh start symbol S' and a single
// production S' -> S prepended, where S is g's current start symbol. The
// returned Grammar's start symbol is S'. Building an ItemSet's initial state
// (and therefore a Family) requires the start symbol to have exactly one
// production; Augmented guarantees that, and a grammar whose start symbol
// has more than one production cannot be built without it.
func (g Grammar) Augmented() Grammar {
	newStartIdent := g.start.ident + "prime"
	augmentedStart := NewNonTerminal(newStartIdent)

	newProdIndex := make(map[string]int, len(g.prodIndex)+1)
	for k, v := range g.prodIndex {
		newProdIndex[k] = v + 1
	}
	augmentedProd := NewProduction(augmentedStart, []Token{TokenFromNonTerminal(g.start)})
	newProdIndex[augmentedProd.key()] = 0

	newProds := make([]Production, 0, len(g.prods)+1)
	newProds = append(newProds, augmentedProd)
	newProds = append(newProds, g.prods...)

	newTokenSet := make(map[string]Token, len(g.tokenSet)+1)
	for k, v := range g.tokenSet {
		newTokenSet[k] = v
	}
	newTokenSet[newStartIdent] = TokenFromNonTerminal(augmentedStart)

	newTokens := make([]Token, 0, len(g.tokens)+1)
	newTokens = append(newTokens, g.tokens...)
	newTokens = append(newTokens, TokenFromNonTerminal(augmentedStart))
	sort.Slice(newTokens, func(i, j int) bool { return CompareTokens(newTokens[i], newTokens[j]) < 0 })

	// The cache map is reused, not copied: g is conceptually consumed by
	// Augmented the same way the pre-augmented value should not be used
	// again afterward.
	g.firstSets[newStartIdent] = &firstEntry{state: firstNotComputed}

	return Grammar{
		prods:     newProds,
		prodIndex: newProdIndex,
		tokens:    newTokens,
		tokenSet:  newTokenSet,
		start:     augmentedStart,
		firstSets: g.firstSets,
	}
}

// Prods returns every production in the grammar, in declaration order
// (augmented production, if any, first).
func (g Grammar) Prods() []Production {
	out := make([]Production, len(g.prods))
	copy(out, g.prods)
	return out
}

// ProdsOf returns every production whose head is nt. The result may be
// empty.
func (g Grammar) ProdsOf(nt NonTerminal) []Production {
	var out []Production
	for _, p := range g.prods {
		if p.head.Equal(nt) {
			out = append(out, p)
		}
	}
	return out
}

// IndexOfProd returns the position of p within Prods, and whether p is
// actually present in the grammar.
func (g Grammar) IndexOfProd(p Production) (int, bool) {
	idx, ok := g.prodIndex[p.key()]
	return idx, ok
}

// StartSymbol returns the grammar's start non-terminal.
func (g Grammar) StartSymbol() NonTerminal { return g.start }

// Tokens returns every symbol declared in the grammar (including Epsilon and
// EOF), in the total order used for deterministic state numbering.
func (g Grammar) Tokens() []Token {
	out := make([]Token, len(g.tokens))
	copy(out, g.tokens)
	return out
}

// GetToken looks up a previously-declared symbol by its textual identifier.
func (g Grammar) GetToken(ident string) (Token, bool) {
	tok, ok := g.tokenSet[ident]
	return tok, ok
}

// ParseProduction parses a single "head -> tail" line using this grammar's
// existing symbol classification: any identifier that is already known as a
// non-terminal stays a non-terminal, any identifier known as a terminal (or
// never seen before) becomes a terminal. It returns an error if the head
// identifier is already classified as a terminal.
func (g Grammar) ParseProduction(line string) (Production, error) {
	idx := strings.Index(line, "->")
	if idx < 0 {
		return Production{}, ParseProduction(0, CauseNoArrow)
	}
	headIdent := strings.TrimSpace(line[:idx])
	if tok, ok := g.GetToken(headIdent); ok && tok.IsTerminal() {
		return Production{}, ParseProductionIdent(0, CauseTokenTypeMismatch, headIdent)
	}
	head := NewNonTerminal(headIdent)

	fields := strings.Fields(line[idx+2:])
	tail := make([]Token, 0, len(fields))
	for _, f := range fields {
		if tok, ok := g.GetToken(f); ok && !tok.IsTerminal() {
			tail = append(tail, tok)
		} else {
			tail = append(tail, TokenFromTerminal(NewTerminal(f)))
		}
	}
	return NewProduction(head, tail), nil
}

// calcFirst computes the FIRST set of nt, returning whether the result still
// needs to be recomputed by the caller (true only when nt participates in a
// left-recursive cycle this call could not fully resolve) and the set
// itself.
//
// The cache for nt walks three states: NotComputed, InProgress, and
// Computed. A left-recursive reference to nt observed while nt is
// InProgress is not an error; it is treated as "first set currently unknown,
// try without this production's contribution" and flagged via needRecalc so
// a second pass can retry those specific productions once nt has a
// provisional set cached.
func (g Grammar) calcFirst(nt NonTerminal, recalc bool) (bool, util.SVSet[Terminal], error) {
	entry, ok := g.firstSets[nt.ident]
	if !ok {
		return false, nil, NonTerminalNotFound(nt.ident)
	}
	switch entry.state {
	case firstInProgress:
		return false, nil, ErrInvalidFirstSetState
	case firstComputed:
		if !recalc {
			return false, entry.set.Copy(), nil
		}
	}
	entry.state = firstInProgress

	firstSet := util.NewSVSet[Terminal]()
	shouldRecalc := false
	needRecalc := map[string]Production{}

	scan := func(prod Production, recalcInner bool) error {
		tail := prod.Tail()
		idx := 0
		shouldBreak := false
		for !shouldBreak {
			shouldBreak = true
			if idx >= len(tail) {
				firstSet.Set(Epsilon.ident, Epsilon)
				continue
			}
			tok := tail[idx]
			idx++
			if t, ok := tok.AsTerminal(); ok {
				if t.ident == Epsilon.ident {
					shouldBreak = false
					continue
				}
				firstSet.Set(t.ident, t)
				continue
			}
			innerNT, _ := tok.AsNonTerminal()
			rec, s, err := g.calcFirst(innerNT, recalcInner)
			if err != nil {
				if err == ErrInvalidFirstSetState {
					shouldRecalc = true
					continue
				}
				return err
			}
			for k, v := range s {
				if k != Epsilon.ident {
					firstSet.Set(k, v)
				}
			}
			if s.Has(Epsilon.ident) {
				shouldBreak = false
			}
			if rec {
				if recalcInner {
					shouldRecalc = true
				} else {
					needRecalc[prod.key()] = prod
				}
			}
		}
		return nil
	}

	for _, prod := range g.ProdsOf(nt) {
		if err := scan(prod, false); err != nil {
			return false, nil, err
		}
	}

	// Provide a provisional set to unblock any sibling recursive call
	// before retrying the productions that bottomed out on InProgress.
	entry.set = firstSet.Copy()
	entry.state = firstComputed

	for _, prod := range needRecalc {
		if err := scan(prod, true); err != nil {
			return false, nil, err
		}
	}

	entry.set = firstSet.Copy()
	entry.state = firstComputed
	return shouldRecalc, firstSet, nil
}

// FirstOfSequence computes FIRST(seq): the set of terminals that can begin
// some derivation of seq, including Epsilon if seq can derive the empty
// string (which, per convention, also covers the case where seq itself is
// empty).
func (g Grammar) FirstOfSequence(seq []Token) (util.SVSet[Terminal], error) {
	firstSet := util.NewSVSet[Terminal]()
	idx := 0
	shouldBreak := false
	for !shouldBreak {
		shouldBreak = true
		if idx >= len(seq) {
			firstSet.Set(Epsilon.ident, Epsilon)
			continue
		}
		tok := seq[idx]
		idx++
		if t, ok := tok.AsTerminal(); ok {
			if t.ident == Epsilon.ident {
				shouldBreak = false
				continue
			}
			firstSet.Set(t.ident, t)
			continue
		}
		nt, _ := tok.AsNonTerminal()
		recalc, fs, err := g.calcFirst(nt, false)
		if err != nil {
			return nil, err
		}
		if recalc {
			recalc2, fs2, err := g.calcFirst(nt, true)
			if err != nil {
				return nil, err
			}
			if recalc2 {
				return nil, ErrUnresolvableFirstSet
			}
			fs = fs2
		}
		for k, v := range fs {
			if k != Epsilon.ident {
				firstSet.Set(k, v)
			}
		}
		if fs.Has(Epsilon.ident) {
			shouldBreak = false
		}
	}
	return firstSet, nil
}

// FirstWithFallthrough computes FIRST(seq), substituting lookaheads for
// Epsilon when seq can derive the empty string. This is the lookahead
// propagation rule used both by item-set closure (propagating a dotted
// item's lookaheads into the productions it introduces) and by panic-mode
// recovery (deciding whether a synthesized shift is consistent with the
// follow context of an item).
func (g Grammar) FirstWithFallthrough(seq []Token, lookaheads util.SVSet[Terminal]) (util.SVSet[Terminal], error) {
	fs, err := g.FirstOfSequence(seq)
	if err != nil {
		return nil, err
	}
	if !fs.Has(Epsilon.ident) {
		return fs, nil
	}
	merged := util.NewSVSet[Terminal]()
	for k, v := range fs {
		if k != Epsilon.ident {
			merged.Set(k, v)
		}
	}
	for k, v := range lookaheads {
		merged.Set(k, v)
	}
	return merged, nil
}
