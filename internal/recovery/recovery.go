// Package recovery implements panic-mode error recovery for states where the
// ACTION table has no entry for the next input terminal: rather than simply
// failing, it looks for an item in the current state that could plausibly
// have produced that terminal and synthesizes the shift, reduce, or accept
// that would follow.
package recovery

import (
	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/lrtable"
)

// ActionKind classifies a PanicAction.
type ActionKind int

const (
	ActionEmpty ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// PanicAction is the recovery decision for one (state, terminal) pair that
// the ACTION table left empty.
type PanicAction struct {
	Kind ActionKind

	// Skipped is the terminal an item in the state expected in place of the
	// one actually seen; valid when Kind == ActionShift.
	Skipped grammar.Terminal
	// To is the state a synthesized shift would land in; valid when
	// Kind == ActionShift.
	To int
	// Reduce is the production index to reduce by; valid when
	// Kind == ActionReduce.
	Reduce int
}

// IsEmpty reports whether no recovery action could be found.
func (p PanicAction) IsEmpty() bool { return p.Kind == ActionEmpty }

// Recover looks for a plausible action at (state, term) when the ACTION
// table has no entry there. It walks the state's items in order:
//
//   - an item expecting a terminal can be hypothetically advanced past it;
//     if the advanced item's own reduce set contains term, or if term is
//     consistent with what could follow the advanced item (FIRST of its
//     remaining sequence, falling through to its lookaheads), the original
//     expected terminal is treated as having been skipped over and a shift
//     into the item's GOTO destination is returned;
//   - an item in final position reduces immediately: by the augmented
//     production (index 0) it's an accept, otherwise a reduce by that
//     production's index.
//
// The first item that yields a decision wins; if no item in the state
// yields one, Recover returns the empty PanicAction.
func Recover(tab lrtable.Table, state int, term grammar.Terminal) (PanicAction, error) {
	itemSets := tab.Family().ItemSets()
	if state < 0 || state >= len(itemSets) {
		return PanicAction{}, lrtable.StateNotFound(state)
	}
	is := itemSets[state]
	g := tab.Grammar()

	for _, item := range is.Items() {
		expected, ok := item.Expected()
		if !ok {
			prodIdx, found := g.IndexOfProd(item.Prod())
			if !found {
				continue
			}
			if prodIdx == 0 {
				return PanicAction{Kind: ActionAccept}, nil
			}
			return PanicAction{Kind: ActionReduce, Reduce: prodIdx}, nil
		}

		expectedTerm, isTerm := expected.AsTerminal()
		if !isTerm {
			continue
		}

		advanced := item.WithDotAdvanced()
		to, found, ambiguous := tab.Family().GotoOn(state, expected)
		if !found {
			continue
		}
		if ambiguous {
			return PanicAction{}, lrtable.ErrAmbiguousGrammar(state)
		}

		if las, reduces := advanced.Reduces(); reduces && las.Has(term.Ident()) {
			return PanicAction{Kind: ActionShift, Skipped: expectedTerm, To: to}, nil
		}

		following, err := g.FirstWithFallthrough(advanced.FutureSeq(), advanced.Lookaheads())
		if err != nil {
			return PanicAction{}, err
		}
		if following.Has(term.Ident()) {
			return PanicAction{Kind: ActionShift, Skipped: expectedTerm, To: to}, nil
		}
	}

	return PanicAction{}, nil
}
