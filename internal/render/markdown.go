// Package render turns an assembled ACTION/GOTO table into text: an exact
// markdown table for documentation and golden-file comparisons, and a
// console-friendly aligned table for interactive use.
package render

import (
	"fmt"
	"strings"

	"github.com/dekarrin/canonlr/internal/lrtable"
	"github.com/dekarrin/rosed"
)

// Markdown renders tab as a GitHub-flavored markdown table: one header row
// of backtick-quoted terminal and non-terminal names, a separator row, and
// one data row per state labeled "$I_i$". Column order follows
// tab.Terminals() then tab.NonTerminals(); GOTO cells are blank where there
// is no edge.
func Markdown(tab lrtable.Table) string {
	terms := tab.Terminals()
	nonTerms := tab.NonTerminals()

	var header strings.Builder
	header.WriteString("| |")
	for _, t := range terms {
		fmt.Fprintf(&header, " `%s` |", t.Ident())
	}
	for _, nt := range nonTerms {
		fmt.Fprintf(&header, " `%s` |", nt.Ident())
	}

	var sep strings.Builder
	sep.WriteString("| - |")
	for i := 0; i < len(terms)+len(nonTerms); i++ {
		sep.WriteString(" - |")
	}

	var data strings.Builder
	for row := 0; row < tab.Rows(); row++ {
		fmt.Fprintf(&data, "| $I_{%d}$ |", row)
		for _, t := range terms {
			cell, _ := tab.Action(row, t)
			fmt.Fprintf(&data, " %s |", cell.String())
		}
		for _, nt := range nonTerms {
			dest, has, _ := tab.Goto(row, nt)
			if has {
				fmt.Fprintf(&data, " %d |", dest)
			} else {
				data.WriteString("  |")
			}
		}
		data.WriteString("\n")
	}

	return header.String() + "\n" + sep.String() + "\n" + strings.TrimRight(data.String(), "\n")
}

// Pretty renders tab as an aligned, human-readable table for terminal
// output, built the same way the ACTION/GOTO summaries in interactive tools
// are laid out: column headers followed by one padded row per state.
func Pretty(tab lrtable.Table) string {
	terms := tab.Terminals()
	nonTerms := tab.NonTerminals()

	headers := make([]string, 0, len(terms)+len(nonTerms)+1)
	headers = append(headers, "state")
	for _, t := range terms {
		headers = append(headers, t.Ident())
	}
	for _, nt := range nonTerms {
		headers = append(headers, nt.Ident())
	}

	data := [][]string{headers}
	for row := 0; row < tab.Rows(); row++ {
		rec := make([]string, 0, len(headers))
		rec = append(rec, fmt.Sprintf("I%d", row))
		for _, t := range terms {
			cell, _ := tab.Action(row, t)
			rec = append(rec, cell.String())
		}
		for _, nt := range nonTerms {
			dest, has, _ := tab.Goto(row, nt)
			if has {
				rec = append(rec, fmt.Sprintf("%d", dest))
			} else {
				rec = append(rec, "")
			}
		}
		data = append(data, rec)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
