/*
Canonlr builds the canonical LR(1) ACTION/GOTO table for a context-free
grammar and, optionally, drives it over a token stream.

It reads a CFG in the simple "head -> alt1 | alt2" textual form, either from
a file named by -g/--grammar or, if that flag is absent, from standard
input. It prints the numbered production list, each canonical state's items
with their reduces and gotos, and a markdown rendering of the ACTION/GOTO
table. With -r/--run it then reads whitespace-separated terminals (from
standard input, one line at a time) and drives the assembled table over
them, reporting any panic-mode recoveries and the resulting rightmost
derivation.

Usage:

	canonlr --symbol-start <name> [flags]

The flags are:

	-s, --symbol-start NAME
		The grammar's start non-terminal. If omitted, the config's
		grammar.start is used, which defaults to "start".

	-g, --grammar FILE
		Read the CFG from FILE instead of standard input.

	-c, --config FILE
		Load defaults (start symbol, cache settings) from a TOML config
		file. Flags given on the command line override the file.

	-r, --run
		After building the table, read a token stream from standard input
		and drive the parser over it.

	-v, --verbose
		Log construction phases (parse, augment, family, table) at info
		level instead of only warnings and errors.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/canonlr/internal/automaton"
	"github.com/dekarrin/canonlr/internal/cache"
	"github.com/dekarrin/canonlr/internal/clrlog"
	"github.com/dekarrin/canonlr/internal/config"
	"github.com/dekarrin/canonlr/internal/driver"
	"github.com/dekarrin/canonlr/internal/grammar"
	"github.com/dekarrin/canonlr/internal/lrtable"
	"github.com/dekarrin/canonlr/internal/render"
	"github.com/dekarrin/canonlr/internal/replio"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota
	// ExitConstructionError indicates the grammar, family, or table could
	// not be built.
	ExitConstructionError
	// ExitConflict indicates the assembled table has an unresolved
	// shift/reduce or reduce/reduce conflict, so the driver refuses to run.
	ExitConflict
	// ExitRunError indicates an I/O or internal failure while driving the
	// table over a token stream.
	ExitRunError
)

var (
	returnCode  = ExitSuccess
	flagStart   = pflag.StringP("symbol-start", "s", "", "The grammar's start non-terminal")
	flagGrammar = pflag.StringP("grammar", "g", "", "Read the CFG from this file instead of stdin")
	flagConfig  = pflag.StringP("config", "c", "", "Load defaults from this TOML config file")
	flagRun     = pflag.BoolP("run", "r", false, "Drive a token stream from stdin after building the table")
	flagVerbose = pflag.BoolP("verbose", "v", false, "Log construction phases at info level")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	cfg := config.Default()
	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitConstructionError
			return
		}
		cfg = loaded
	}

	start := *flagStart
	if start == "" {
		start = cfg.Grammar.Start
	}
	if start == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -s/--symbol-start is required")
		returnCode = ExitConstructionError
		return
	}

	minLevel := clrlog.LevelWarn
	if *flagVerbose {
		minLevel = clrlog.LevelInfo
	}
	log := clrlog.New(os.Stderr, minLevel)

	src, err := readGrammarSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConstructionError
		return
	}

	tab, err := buildTable(src, start, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConstructionError
		return
	}

	printReport(tab)

	if cfg.Cache.Enabled && cfg.Cache.File != "" {
		if err := cache.SaveFile(cfg.Cache.File, tab); err != nil {
			log.Warnf("could not write table cache: %s", err.Error())
		}
	}

	if tab.Conflict() {
		fmt.Fprintln(os.Stderr, "ERROR: table has unresolved conflicts; refusing to run the driver")
		returnCode = ExitConflict
		return
	}

	if *flagRun {
		if err := runDriver(tab, log); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitRunError
			return
		}
	}
}

func readGrammarSource() (string, error) {
	if *flagGrammar != "" {
		data, err := os.ReadFile(*flagGrammar)
		if err != nil {
			return "", fmt.Errorf("read grammar file %s: %w", *flagGrammar, err)
		}
		return string(data), nil
	}
	data, err := readAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read grammar from stdin: %w", err)
	}
	return data, nil
}

func readAll(f *os.File) (string, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func buildTable(src, start string, log clrlog.Logger) (lrtable.Table, error) {
	g, err := grammar.ParseGrammar(src, start)
	if err != nil {
		return lrtable.Table{}, fmt.Errorf("parse grammar: %w", err)
	}
	log.Infof("parsed grammar with %d production(s)", len(g.Prods()))

	g = g.Augmented()
	log.Infof("augmented start symbol is %s", g.StartSymbol())

	fam, err := automaton.BuildFamily(g)
	if err != nil {
		return lrtable.Table{}, fmt.Errorf("build canonical collection: %w", err)
	}
	log.Infof("built family with %d state(s)", fam.Len())

	tab, err := lrtable.Build(fam, g)
	if err != nil {
		return lrtable.Table{}, fmt.Errorf("build table: %w", err)
	}
	log.Infof("built table (conflict: %t)", tab.Conflict())

	return tab, nil
}

func printReport(tab lrtable.Table) {
	g := tab.Grammar()
	fam := tab.Family()

	for idx, prod := range g.Prods() {
		fmt.Printf("%4d %s\n", idx, prod)
	}
	fmt.Println()

	for state, is := range fam.ItemSets() {
		fmt.Printf("I_%d:\n", state)
		for _, item := range is.Items() {
			fmt.Println(item)
		}
		fmt.Println("reduces:")
		for _, r := range is.Reduces() {
			prodIdx, _ := g.IndexOfProd(r.Item.Prod())
			fmt.Printf("%s r %d\n", r.Term, prodIdx)
		}
		fmt.Println("gotos:")
		if edges, ok := fam.GotosOf(state); ok {
			for _, e := range edges {
				fmt.Printf("I_%d -- %s --> I_%d\n", state, e.Tok, e.To)
			}
		}
		fmt.Println()
	}

	fmt.Println("--- Table ---")
	fmt.Println(render.Markdown(tab))
}

func runDriver(tab lrtable.Table, log clrlog.Logger) error {
	reader := replio.NewDirectReader(os.Stdin)
	terms, err := replio.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read token stream: %w", err)
	}

	input := make([]driver.InputTerm, len(terms))
	copy(input, terms)

	result, err := driver.Run(tab, input)
	if err != nil {
		return err
	}

	for _, c := range result.Corrections {
		fmt.Printf("语法错误，第%d行，缺少\"%s\"\n", c.Line, c.Skipped)
	}

	if !result.Accepted {
		log.Errorf("parse did not accept input; recovery escaped at end of input")
	}

	fmt.Println(result.Derivation())
	return nil
}
