// Package prompter implements the §6 Prompter abstraction used by the
// interactive input resolver. It is an external-collaborator surface
// per spec §1 ("the TUI prompter" is out of CORE scope); CLI is a thin
// reference implementation so the module is runnable end-to-end.
package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Kind mirrors the input kinds a question can be asked about.
type Kind int

const (
	KindBoolean Kind = iota
	KindText
	KindEnum
	KindList
)

// Question is the prompt payload described in spec §6.
type Question struct {
	Kind    Kind
	Path    string
	Label   string
	Help    string
	Default string
	Options []string // value strings, in declaration order
}

// CancelledError is returned by a Prompter when the user aborts input.
type CancelledError struct{}

func (*CancelledError) Error() string { return "prompt cancelled" }

// Prompter asks a single question and returns the raw answer text,
// per spec §6 "prompt(question) -> answer". internal/resolver parses
// and validates the returned string against the input's kind.
type Prompter interface {
	Prompt(q Question) (string, error)
}

// CLI is a reference Prompter reading from an io.Reader (normally
// os.Stdin) and writing prompts to an io.Writer (normally os.Stdout).
//
// Grounded on funvibe/funxy's direct dependency on
// github.com/mattn/go-isatty: IsInteractive uses it to tell whether
// stdin is a real terminal, the same check a REPL front-end would make
// before deciding whether to fall back to batch/defaults.
type CLI struct {
	In  io.Reader
	Out io.Writer
	br  *bufio.Reader
}

// NewCLI returns a CLI prompter over os.Stdin/os.Stdout.
func NewCLI() *CLI {
	return &CLI{In: os.Stdin, Out: os.Stdout}
}

// IsInteractive reports whether stdin is attached to a real terminal.
// A batch-mode caller can use this to decide whether it is safe to
// fall back to interactive prompting when a required answer is
// missing from the batch config.
func IsInteractive() bool {
	f, ok := os.Stdin.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *CLI) reader() *bufio.Reader {
	if c.br == nil {
		c.br = bufio.NewReader(c.In)
	}
	return c.br
}

// Prompt renders q and blocks for one line of input. An empty answer
// falls back to q.Default. A bare "q" or "quit" line is reported as
// CancelledError.
func (c *CLI) Prompt(q Question) (string, error) {
	fmt.Fprintf(c.Out, "%s", q.Label)
	if q.Help != "" {
		fmt.Fprintf(c.Out, " (%s)", q.Help)
	}
	switch q.Kind {
	case KindEnum, KindList:
		for i, opt := range q.Options {
			fmt.Fprintf(c.Out, "\n  %d) %s", i+1, opt)
		}
		fmt.Fprint(c.Out, "\n")
	}
	if q.Default != "" {
		fmt.Fprintf(c.Out, " [%s]", q.Default)
	}
	fmt.Fprint(c.Out, ": ")

	line, err := c.reader().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "q" || line == "quit" {
		return "", &CancelledError{}
	}
	if line == "" {
		return q.Default, nil
	}
	return line, nil
}
