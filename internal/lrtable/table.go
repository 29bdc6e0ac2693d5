// Package lrtable assembles the ACTION/GOTO table from a canonical LR(1)
// family, and represents shift/reduce and reduce/reduce conflicts as a
// binary tree rather than flattening them, so the original insertion order
// of colliding actions is never lost.
package lrtable

import (
	"fmt"

	"github.com/dekarrin/canonlr/internal/automaton"
	"github.com/dekarrin/canonlr/internal/grammar"
)

// ActionKind classifies an ActionCell.
type ActionKind int

const (
	ActionEmpty ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
	ActionConflict
)

// ActionCell is one cell of the ACTION table. A conflict is represented as a
// binary tree of the colliding cells (Left, Right), built in the order the
// colliding actions were discovered, rather than as a flat list; Flatten
// walks that tree left to right to recover the original insertion order.
type ActionCell struct {
	Kind   ActionKind
	Shift  int // valid when Kind == ActionShift: the state to push
	Reduce int // valid when Kind == ActionReduce: the production index
	Left   *ActionCell
	Right  *ActionCell
}

// IsEmpty reports whether the cell holds no action.
func (a ActionCell) IsEmpty() bool { return a.Kind == ActionEmpty }

// IsConflict reports whether the cell holds two or more colliding actions.
func (a ActionCell) IsConflict() bool { return a.Kind == ActionConflict }

// update folds cell into a, returning the merged cell and whether doing so
// introduced a conflict. An empty cell is simply replaced; colliding
// non-empty cells (including an existing conflict colliding with a further
// action) are wrapped in a new conflict node with a as the left child and
// cell as the right child, preserving discovery order.
func (a ActionCell) update(cell ActionCell) (ActionCell, bool) {
	if a.Kind == ActionEmpty {
		return cell, false
	}
	if cell.Kind == ActionEmpty {
		return a, false
	}
	left, right := a, cell
	return ActionCell{Kind: ActionConflict, Left: &left, Right: &right}, true
}

// Flatten returns every non-conflict leaf of the cell's tree, left to right.
// For a non-conflict cell it returns a single-element slice containing
// itself.
func (a ActionCell) Flatten() []ActionCell {
	if a.Kind != ActionConflict {
		return []ActionCell{a}
	}
	out := a.Left.Flatten()
	out = append(out, a.Right.Flatten()...)
	return out
}

func (a ActionCell) String() string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("s%d", a.Shift)
	case ActionReduce:
		return fmt.Sprintf("r%d", a.Reduce)
	case ActionConflict:
		return "[conflict]"
	case ActionAccept:
		return "acc"
	default:
		return ""
	}
}

// Table is the assembled ACTION/GOTO table for a canonical LR(1) family.
type Table struct {
	action     [][]ActionCell
	goto_      [][]int // -1 means no edge
	terms      []grammar.Terminal
	nonTerms   []grammar.NonTerminal
	termIdx    map[string]int
	nonTermIdx map[string]int
	conflict   bool
	family     automaton.Family
	grammar    grammar.Grammar
}

// Build assembles the ACTION/GOTO table from family and g, following
// Algorithm 4.56 (Aho, Lam, Sethi & Ullman): every GOTO edge on a terminal
// becomes a shift, every GOTO edge on a non-terminal becomes a GOTO-table
// entry, and every reducible item becomes a reduce (or accept, for the
// augmented production reducing on EOF) in every column named by its
// lookahead set.
func Build(family automaton.Family, g grammar.Grammar) (Table, error) {
	tokens := g.Tokens()
	var terms []grammar.Terminal
	var nonTerms []grammar.NonTerminal
	i := 0
	for ; i < len(tokens); i++ {
		t, ok := tokens[i].AsTerminal()
		if !ok {
			break
		}
		terms = append(terms, t)
	}
	for ; i < len(tokens); i++ {
		nt, _ := tokens[i].AsNonTerminal()
		nonTerms = append(nonTerms, nt)
	}

	termIdx := make(map[string]int, len(terms))
	for idx, t := range terms {
		termIdx[t.Ident()] = idx
	}
	nonTermIdx := make(map[string]int, len(nonTerms))
	for idx, nt := range nonTerms {
		nonTermIdx[nt.Ident()] = idx
	}

	rows := family.Len()
	action := make([][]ActionCell, rows)
	gotoTbl := make([][]int, rows)
	for r := 0; r < rows; r++ {
		action[r] = make([]ActionCell, len(terms))
		gotoTbl[r] = make([]int, len(nonTerms))
		for c := range gotoTbl[r] {
			gotoTbl[r][c] = -1
		}
	}

	conflict := false
	eofIdx, hasEOF := termIdx[grammar.EOF.Ident()]

	for row, is := range family.ItemSets() {
		if edges, ok := family.GotosOf(row); ok {
			for _, e := range edges {
				if t, isTerm := e.Tok.AsTerminal(); isTerm {
					idx := termIdx[t.Ident()]
					merged, conf := action[row][idx].update(ActionCell{Kind: ActionShift, Shift: e.To})
					action[row][idx] = merged
					conflict = conflict || conf
				} else {
					nt, _ := e.Tok.AsNonTerminal()
					gotoTbl[row][nonTermIdx[nt.Ident()]] = e.To
				}
			}
		}

		for _, r := range is.Reduces() {
			prodIdx, found := g.IndexOfProd(r.Item.Prod())
			if !found {
				continue
			}
			termColumn, ok := termIdx[r.Term.Ident()]
			if !ok {
				continue
			}
			var cell ActionCell
			if prodIdx == 0 && hasEOF && termColumn == eofIdx {
				cell = ActionCell{Kind: ActionAccept}
			} else {
				cell = ActionCell{Kind: ActionReduce, Reduce: prodIdx}
			}
			merged, conf := action[row][termColumn].update(cell)
			action[row][termColumn] = merged
			conflict = conflict || conf
		}
	}

	return Table{
		action:     action,
		goto_:      gotoTbl,
		terms:      terms,
		nonTerms:   nonTerms,
		termIdx:    termIdx,
		nonTermIdx: nonTermIdx,
		conflict:   conflict,
		family:     family,
		grammar:    g,
	}, nil
}

// Rows returns the number of states (and ACTION/GOTO rows) in the table.
func (t Table) Rows() int { return len(t.action) }

// Terminals returns the terminal columns of the ACTION table, in table
// order.
func (t Table) Terminals() []grammar.Terminal {
	out := make([]grammar.Terminal, len(t.terms))
	copy(out, t.terms)
	return out
}

// NonTerminals returns the non-terminal columns of the GOTO table, in table
// order.
func (t Table) NonTerminals() []grammar.NonTerminal {
	out := make([]grammar.NonTerminal, len(t.nonTerms))
	copy(out, t.nonTerms)
	return out
}

// Conflict reports whether assembling the table found any shift/reduce or
// reduce/reduce collision.
func (t Table) Conflict() bool { return t.conflict }

// Family returns the canonical collection the table was built from.
func (t Table) Family() automaton.Family { return t.family }

// Grammar returns the grammar the table was built from.
func (t Table) Grammar() grammar.Grammar { return t.grammar }

// Action looks up ACTION[state, term]. ok is false if state or term isn't
// present in the table.
func (t Table) Action(state int, term grammar.Terminal) (cell ActionCell, ok bool) {
	idx, known := t.termIdx[term.Ident()]
	if !known || state < 0 || state >= len(t.action) {
		return ActionCell{}, false
	}
	return t.action[state][idx], true
}

// Actions returns every non-empty ACTION cell of state, paired with its
// terminal, in terminal table order.
func (t Table) Actions(state int) (out []struct {
	Term grammar.Terminal
	Cell ActionCell
}, ok bool) {
	if state < 0 || state >= len(t.action) {
		return nil, false
	}
	for idx, cell := range t.action[state] {
		if cell.IsEmpty() {
			continue
		}
		out = append(out, struct {
			Term grammar.Terminal
			Cell ActionCell
		}{Term: t.terms[idx], Cell: cell})
	}
	return out, true
}

// Goto looks up GOTO[state, nonTerm]. stateValid is false if state or
// nonTerm isn't present in the table; hasEdge is false if the state is valid
// but has no GOTO edge on nonTerm.
func (t Table) Goto(state int, nonTerm grammar.NonTerminal) (dest int, hasEdge bool, stateValid bool) {
	idx, known := t.nonTermIdx[nonTerm.Ident()]
	if !known || state < 0 || state >= len(t.goto_) {
		return 0, false, false
	}
	d := t.goto_[state][idx]
	if d < 0 {
		return 0, false, true
	}
	return d, true, true
}
