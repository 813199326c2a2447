package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when stdin ends before an answer was read.
var ErrNoInput = errors.New("no input")

// Prompter asks the user questions on stdin. Questions are written to out,
// which is stderr, so JSON output stays clean.
type Prompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
	yes bool
}

// NewPrompter reads answers from in. With yes set every confirmation is
// accepted without asking.
func NewPrompter(in io.Reader, out io.Writer, yes bool) *Prompter {
	return &Prompter{in: in, r: bufio.NewReader(in), out: out, yes: yes}
}

// Confirm asks a y/N question. Anything but y or yes is a no.
func (p *Prompter) Confirm(prompt string) bool {
	if p.yes {
		return true
	}
	answer, err := p.Line(prompt + " [y/N]")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// Line asks for one line of text and returns it trimmed.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(p.out)
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password asks for a secret. On a terminal the input is not echoed;
// otherwise one line is read like any other answer.
func (p *Prompter) Password(prompt string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(prompt)
	}
	fmt.Fprintf(p.out, "%s: ", prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
