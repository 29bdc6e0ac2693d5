package automaton

import (
	"sort"

	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/util"
)

// ItemSet is a canonical LR(1) state: a closed, core-merged set of Items.
type ItemSet struct {
	g     grammar.Grammar
	items []Item // sorted by core key, deterministic regardless of map iteration order
}

// InitialItemSet builds I0, the closure of the augmented start production
// with lookahead {EOF}. g must be augmented (Grammar.Augmented); if its
// start symbol doesn't have exactly one production, grammar.ErrGrammarNotAugmented
// is returned.
func InitialItemSet(g grammar.Grammar) (ItemSet, error) {
	startProds := g.ProdsOf(g.StartSymbol())
	if len(startProds) != 1 {
		return ItemSet{}, grammar.ErrGrammarNotAugmented
	}
	la := util.NewSVSet[grammar.Terminal]()
	la.Set(grammar.EOF.Ident(), grammar.EOF)
	seed := map[string]Item{}
	item := InitialItem(startProds[0], la)
	seed[item.key()] = item
	return closeItemSet(g, seed)
}

// closeItemSet runs the closure fixpoint over seed (a map keyed by full item
// identity) and then merges items sharing a core, matching the two-phase
// structure: items are deduplicated exactly while the fixpoint searches for
// new items, then coalesced by (production, dot) once it converges.
func closeItemSet(g grammar.Grammar, seed map[string]Item) (ItemSet, error) {
	items := make(map[string]Item, len(seed))
	for k, v := range seed {
		items[k] = v
	}

	for {
		newItems := map[string]Item{}
		for _, item := range items {
			tok, ok := item.expected()
			if !ok {
				continue
			}
			nt, isNonTerm := tok.AsNonTerminal()
			if !isNonTerm {
				continue
			}
			lookaheads, err := g.FirstWithFallthrough(item.futureSeq(), item.lookaheads)
			if err != nil {
				return ItemSet{}, err
			}
			for _, prod := range g.ProdsOf(nt) {
				ni := InitialItem(prod, lookaheads)
				newItems[ni.key()] = ni
			}
		}
		added := false
		for k, v := range newItems {
			if _, exists := items[k]; !exists {
				items[k] = v
				added = true
			}
		}
		if !added {
			break
		}
	}

	return ItemSet{g: g, items: mergeByCore(items)}, nil
}

func mergeByCore(items map[string]Item) []Item {
	byCore := map[string]Item{}
	var order []string
	for _, item := range items {
		c := item.core()
		if existing, ok := byCore[c]; ok {
			existing.lookaheads = existing.lookaheads.Union(item.lookaheads)
			byCore[c] = existing
		} else {
			byCore[c] = item
			order = append(order, c)
		}
	}
	sort.Strings(order)
	merged := make([]Item, len(order))
	for i, c := range order {
		merged[i] = byCore[c]
	}
	return merged
}

// Goto computes GOTO(is, token): the closure of every item in is advanced
// past token. ok is false if no item in is expects token.
func (is ItemSet) Goto(token grammar.Token) (result ItemSet, ok bool, err error) {
	seed := map[string]Item{}
	for _, item := range is.items {
		if ni, advanced := item.Goto(token); advanced {
			seed[ni.key()] = ni
		}
	}
	if len(seed) == 0 {
		return ItemSet{}, false, nil
	}
	result, err = closeItemSet(is.g, seed)
	if err != nil {
		return ItemSet{}, false, err
	}
	return result, true, nil
}

// Items returns the item set's members in deterministic (core-sorted)
// order.
func (is ItemSet) Items() []Item {
	out := make([]Item, len(is.items))
	copy(out, is.items)
	return out
}

// Reduces returns every (item, lookahead terminal) pair where item is in
// final position, i.e. every (item, terminal) combination that calls for a
// reduction by item.Prod() when the lookahead terminal is seen.
func (is ItemSet) Reduces() []struct {
	Item Item
	Term grammar.Terminal
} {
	var out []struct {
		Item Item
		Term grammar.Terminal
	}
	for _, item := range is.items {
		las, ok := item.Reduces()
		if !ok {
			continue
		}
		terms := las.Elements()
		sort.Slice(terms, func(i, j int) bool {
			return grammar.CompareTerminals(las[terms[i]], las[terms[j]]) < 0
		})
		for _, k := range terms {
			out = append(out, struct {
				Item Item
				Term grammar.Terminal
			}{Item: item, Term: las[k]})
		}
	}
	return out
}

// signature is a canonical string identifying this ItemSet's full contents
// (cores and merged lookaheads), used to detect when GOTO lands on a state
// that's already present in the family.
func (is ItemSet) signature() string {
	keys := make([]string, len(is.items))
	for i, item := range is.items {
		keys[i] = item.key()
	}
	sort.Strings(keys)
	var out string
	for _, k := range keys {
		out += k + "\x01"
	}
	return out
}

// Family is the canonical collection of LR(1) states (I0, I1, I2, ...)
// derived from a Grammar, along with the GOTO edges between them.
type Family struct {
	itemSets []ItemSet
	gotos    map[int][]gotoEdge
}

type gotoEdge struct {
	tok grammar.Token
	to  int
}

// BuildFamily constructs the canonical collection from g (which must be
// augmented). States are discovered breadth-first starting from I0, and
// within each state the grammar's tokens are visited in Grammar.Tokens'
// total order, so the resulting numbering is deterministic across runs for
// the same grammar.
func BuildFamily(g grammar.Grammar) (Family, error) {
	i0, err := InitialItemSet(g)
	if err != nil {
		return Family{}, err
	}

	itemSets := []ItemSet{i0}
	index := map[string]int{i0.signature(): 0}
	gotos := map[int][]gotoEdge{}
	tokens := g.Tokens()
	expanded := 0

	for {
		var newStates []ItemSet
		for from := expanded; from < len(itemSets); from++ {
			is := itemSets[from]
			for _, t := range tokens {
				next, ok, err := is.Goto(t)
				if err != nil {
					return Family{}, err
				}
				if !ok {
					continue
				}
				sig := next.signature()
				if to, exists := index[sig]; exists {
					gotos[from] = append(gotos[from], gotoEdge{tok: t, to: to})
					continue
				}
				to := len(itemSets) + len(newStates)
				gotos[from] = append(gotos[from], gotoEdge{tok: t, to: to})
				index[sig] = to
				newStates = append(newStates, next)
			}
		}
		expanded = len(itemSets)
		if len(newStates) == 0 {
			break
		}
		itemSets = append(itemSets, newStates...)
	}

	return Family{itemSets: itemSets, gotos: gotos}, nil
}

// ItemSets returns the canonical collection's states in I0, I1, I2, ...
// order.
func (f Family) ItemSets() []ItemSet {
	out := make([]ItemSet, len(f.itemSets))
	copy(out, f.itemSets)
	return out
}

// Len returns the number of states in the family.
func (f Family) Len() int { return len(f.itemSets) }

// GotosOf returns the outgoing GOTO edges of state from, in the grammar's
// token total order. ok is false if from has no outgoing edges (including
// when from is out of range).
func (f Family) GotosOf(from int) (edges []struct {
	Tok grammar.Token
	To  int
}, ok bool) {
	raw, exists := f.gotos[from]
	if !exists {
		return nil, false
	}
	sorted := make([]gotoEdge, len(raw))
	copy(sorted, raw)
	sort.Slice(sorted, func(i, j int) bool { return grammar.CompareTokens(sorted[i].tok, sorted[j].tok) < 0 })
	out := make([]struct {
		Tok grammar.Token
		To  int
	}, len(sorted))
	for i, e := range sorted {
		out[i] = struct {
			Tok grammar.Token
			To  int
		}{Tok: e.tok, To: e.to}
	}
	return out, true
}

// GotoOn looks up the single GOTO edge out of state from on token. found is
// false if from has no such edge. ambiguous is true if from has more than
// one edge on token, which should never happen for a table built by
// BuildFamily but is checked explicitly since panic-mode recovery relies on
// the edge being unique.
func (f Family) GotoOn(from int, tok grammar.Token) (to int, found bool, ambiguous bool) {
	edges, ok := f.GotosOf(from)
	if !ok {
		return 0, false, false
	}
	count := 0
	for _, e := range edges {
		if e.Tok.Equal(tok) {
			to = e.To
			count++
		}
	}
	if count == 0 {
		return 0, false, false
	}
	return to, true, count > 1
}

// Gotos iterates every (from, token, to) edge in the family.
func (f Family) Gotos() []struct {
	From int
	Tok  grammar.Token
	To   int
} {
	var out []struct {
		From int
		Tok  grammar.Token
		To   int
	}
	for from := range f.itemSets {
		edges, ok := f.GotosOf(from)
		if !ok {
			continue
		}
		for _, e := range edges {
			out = append(out, struct {
				From int
				Tok  grammar.Token
				To   int
			}{From: from, Tok: e.Tok, To: e.To})
		}
	}
	return out
}
