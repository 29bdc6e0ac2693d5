// Package replio reads a stream of input terminals for the driver, either
// directly from any io.Reader or interactively from a terminal using the
// github.com/chzyer/readline line editor, tokenizing each line into whitespace-separated terminal
// identifiers the way the reference tokenizer treats its input program.
package replio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/canonlr/internal/driver"
	"github.com/dekarrin/canonlr/internal/grammar"
)

// DirectTermReader reads terminal lines from any io.Reader, one line at a
// time, without a prompt or line editing.
//
// DirectTermReader should not be used directly; create one with
// NewDirectReader.
type DirectTermReader struct {
	r *bufio.Reader
}

// InteractiveTermReader reads terminal lines from stdin using
// github.com/chzyer/readline, so editing keystrokes and history never leak into the token stream.
//
// InteractiveTermReader should not be used directly; create one with
// NewInteractiveReader.
type InteractiveTermReader struct {
	rl     *readline.Instance
	prompt string
}

// NewDirectReader wraps r in a DirectTermReader. The returned reader has no
// resources that need closing, but Close is provided so callers can treat
// every reader uniformly.
func NewDirectReader(r io.Reader) *DirectTermReader {
	return &DirectTermReader{r: bufio.NewReader(r)}
}

// NewInteractiveReader starts a readline-backed terminal reader on stdin.
// The returned reader must have Close called on it before disposal.
func NewInteractiveReader() (*InteractiveTermReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "tokens> ",
	})
	if err != nil {
		return nil, fmt.Errorf("replio: create readline config: %w", err)
	}
	return &InteractiveTermReader{rl: rl, prompt: "tokens> "}, nil
}

// Close releases the reader's resources, if any.
func (d *DirectTermReader) Close() error { return nil }

// Close releases the readline resources associated with r.
func (r *InteractiveTermReader) Close() error { return r.rl.Close() }

// SetPrompt updates the interactive prompt.
func (r *InteractiveTermReader) SetPrompt(p string) {
	r.prompt = p
	r.rl.SetPrompt(p)
}

// ReadLine reads one line of input, blocking until a non-blank line is
// available. At end of input it returns "" and io.EOF.
func (d *DirectTermReader) ReadLine() (string, error) {
	var line string
	var err error
	for line == "" {
		line, err = d.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if err == io.EOF {
			break
		}
	}
	return line, nil
}

// ReadLine reads one line of input via readline, blocking until a non-blank
// line is available. At end of input it returns "" and io.EOF.
func (r *InteractiveTermReader) ReadLine() (string, error) {
	var line string
	var err error
	for line == "" {
		line, err = r.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if err == io.EOF {
			break
		}
	}
	return line, nil
}

// TokenizeLine splits a line of input into terminals, tagging each with
// lineNum, the way the driver expects its InputTerm stream.
func TokenizeLine(lineNum int, line string) []driver.InputTerm {
	fields := strings.Fields(line)
	out := make([]driver.InputTerm, len(fields))
	for i, f := range fields {
		out[i] = driver.InputTerm{Line: lineNum, Term: grammar.NewTerminal(f)}
	}
	return out
}

// lineReader is satisfied by both DirectTermReader and InteractiveTermReader.
type lineReader interface {
	ReadLine() (string, error)
}

// ReadAll drains r until io.EOF, tokenizing every line read into the
// driver's InputTerm stream.
func ReadAll(r lineReader) ([]driver.InputTerm, error) {
	var out []driver.InputTerm
	for lineNum := 0; ; lineNum++ {
		line, err := r.ReadLine()
		if line != "" {
			out = append(out, TokenizeLine(lineNum, line)...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
