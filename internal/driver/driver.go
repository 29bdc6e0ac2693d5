// Package driver implements the table-driven shift-reduce parse loop
// (Aho, Lam, Sethi & Ullman, algorithm 4.56): it walks an input token stream
// against an assembled ACTION/GOTO table, falling back to panic-mode
// recovery whenever the table has no entry for the current (state, token)
// pair, and records the reduction sequence needed to print a rightmost
// derivation.
package driver

import (
	"fmt"
	"strings"

	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/lrtable"
	"github.com/dekarrin/canonlr/internal/recovery"
)

// InputTerm is one terminal of the token stream fed to Run, tagged with the
// source line it came from so recovered errors can be reported against it.
type InputTerm struct {
	Line int
	Term grammar.Terminal
}

// Correction records a terminal panic-mode recovery inserted into the input
// stream because the table had no entry for the terminal actually present.
type Correction struct {
	Line    int
	Skipped grammar.Terminal
}

// derivationStep is one recorded reduction: the token stack at the moment of
// reduction, plus the input cursor at that moment, used to render the
// sentential form.
type derivationStep struct {
	tokens []grammar.Token
	cursor int
}

// Result is the outcome of running the driver over an input stream.
type Result struct {
	Accepted    bool
	Corrections []Correction
	steps       []derivationStep
	terms       []InputTerm
}

// maxStepsPerTerm bounds the parse loop so a malformed table (one that
// always recovers into a no-progress state) can never hang the driver; Run
// allows this many steps per input terminal, plus one terminal's worth for
// EOF.
const maxStepsPerTerm = 64

// Run drives tab over input, shifting and reducing per the ACTION/GOTO
// table, and falling back to recovery.Recover whenever the table has no
// entry for the current (state, terminal) pair. It returns once an Accept
// action fires or recovery gives up at end-of-input.
func Run(tab lrtable.Table, input []InputTerm) (Result, error) {
	terms := make([]InputTerm, len(input))
	copy(terms, input)

	stack := []int{0}
	step := []grammar.Token{}
	var steps []derivationStep
	var corrections []Correction

	cursor := 0
	limit := (len(terms) + 1) * maxStepsPerTerm

	peek := func() (int, InputTerm) {
		if cursor >= len(terms) {
			return len(terms), InputTerm{Line: -1, Term: grammar.EOF}
		}
		return cursor, terms[cursor]
	}

	doReduce := func(prodIdx int) error {
		prods := tab.Grammar().Prods()
		if prodIdx < 0 || prodIdx >= len(prods) {
			return fmt.Errorf("driver: production index %d out of range", prodIdx)
		}
		prod := prods[prodIdx]

		steps = append(steps, derivationStep{tokens: append([]grammar.Token{}, step...), cursor: cursor})

		tail := prod.TailWithoutEpsilon()
		for i := len(tail) - 1; i >= 0; i-- {
			if len(step) == 0 || len(stack) == 0 {
				return fmt.Errorf("driver: stack underflow reducing by production %d", prodIdx)
			}
			popped := step[len(step)-1]
			step = step[:len(step)-1]
			if !popped.Equal(tail[i]) {
				return fmt.Errorf("driver: stack mismatch reducing by production %d: popped %s, expected %s", prodIdx, popped, tail[i])
			}
			stack = stack[:len(stack)-1]
		}
		step = append(step, grammar.TokenFromNonTerminal(prod.Head()))

		top := stack[len(stack)-1]
		if to, has, valid := tab.Goto(top, prod.Head()); valid && has {
			stack = append(stack, to)
		}
		return nil
	}

	doShift := func(state int, term grammar.Terminal) {
		stack = append(stack, state)
		step = append(step, grammar.TokenFromTerminal(term))
		cursor++
	}

	for i := 0; ; i++ {
		if i > limit {
			return Result{}, fmt.Errorf("driver: exceeded step limit without accepting or escaping")
		}

		top := stack[len(stack)-1]
		_, cur := peek()

		cell, ok := tab.Action(top, cur.Term)
		if !ok {
			return Result{}, fmt.Errorf("driver: state %d or terminal %s not present in table", top, cur.Term)
		}

		switch cell.Kind {
		case lrtable.ActionShift:
			doShift(cell.Shift, cur.Term)

		case lrtable.ActionReduce:
			if err := doReduce(cell.Reduce); err != nil {
				return Result{}, err
			}

		case lrtable.ActionAccept:
			if err := doReduce(0); err != nil {
				return Result{}, err
			}
			return finish(steps, terms, corrections, true), nil

		case lrtable.ActionConflict:
			return Result{}, fmt.Errorf("driver: table has an unresolved conflict at state %d, terminal %s", top, cur.Term)

		case lrtable.ActionEmpty:
			action, err := recovery.Recover(tab, top, cur.Term)
			if err != nil {
				return Result{}, err
			}
			switch action.Kind {
			case recovery.ActionReduce:
				if err := doReduce(action.Reduce); err != nil {
					return Result{}, err
				}
			case recovery.ActionShift:
				corrections = append(corrections, Correction{Line: cur.Line, Skipped: action.Skipped})
				inserted := InputTerm{Line: cur.Line, Term: action.Skipped}
				terms = append(terms[:cursor], append([]InputTerm{inserted}, terms[cursor:]...)...)
				doShift(action.To, action.Skipped)
			case recovery.ActionAccept:
				if err := doReduce(0); err != nil {
					return Result{}, err
				}
				return finish(steps, terms, corrections, true), nil
			default: // empty
				if cur.Term.Equal(grammar.EOF) {
					return finish(steps, terms, corrections, false), nil
				}
				cursor++
			}
		}
	}
}

func finish(steps []derivationStep, terms []InputTerm, corrections []Correction, accepted bool) Result {
	return Result{Accepted: accepted, Corrections: corrections, steps: steps, terms: terms}
}

// Derivation renders the recorded reductions as a rightmost derivation, one
// sentential form per line, each followed by " =>" except the last.
func (r Result) Derivation() string {
	var b strings.Builder
	for idx := len(r.steps) - 1; idx >= 0; idx-- {
		step := r.steps[idx]
		var prefix strings.Builder
		for _, tok := range step.tokens {
			prefix.WriteString(tok.String())
			prefix.WriteString(" ")
		}
		line := strings.TrimRight(prefix.String(), " ")
		for _, t := range r.terms[min(step.cursor, len(r.terms)):] {
			line += " " + t.Term.String()
		}
		b.WriteString(line)
		if idx != 0 {
			b.WriteString(" =>")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
