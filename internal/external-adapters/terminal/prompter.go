// Package terminal reads operator answers from the controlling terminal.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ochairo/forgedroid/internal/domain/entities"
)

// Prompter asks questions on out and reads line answers from in
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// NewPrompter creates a prompter over stdin and stderr
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stderr)
}

// NewPrompterWithIO creates a prompter over arbitrary streams. Secret input is
// hidden only when in is a terminal.
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.isTerm = true
	}
	return p
}

// Prompt prints message and returns the answered line without its newline
func (p *Prompter) Prompt(message string) (string, error) {
	if _, err := fmt.Fprint(p.out, message); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %v", entities.ErrUserAbort, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptSecret prints message and reads a line without echoing it
func (p *Prompter) PromptSecret(message string) (string, error) {
	if !p.isTerm {
		return p.Prompt(message)
	}
	if _, err := fmt.Fprint(p.out, message); err != nil {
		return "", err
	}
	secret, err := term.ReadPassword(p.fd)
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrUserAbort, err)
	}
	return string(secret), nil
}
