package workspace

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter answers yes/no confirmations.
type Prompter interface {
	Confirm(prompt string) bool
}

// Decline answers no to everything.
type Decline struct{}

// Confirm always returns false.
func (Decline) Confirm(string) bool { return false }

// AssumeYes answers yes to everything (the --yes flag).
type AssumeYes struct{}

// Confirm always returns true.
func (AssumeYes) Confirm(string) bool { return true }

// LinePrompter asks on Out and reads one line per question from In.
// Only "y" and "yes" (any case) confirm; anything else, including EOF, is no.
type LinePrompter struct {
	out    io.Writer
	reader *bufio.Reader
}

// NewLinePrompter creates a prompter over the given streams.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{out: out, reader: bufio.NewReader(in)}
}

// Confirm prints "prompt [y/N]: " and reads the answer.
func (p *LinePrompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
