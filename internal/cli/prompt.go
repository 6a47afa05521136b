package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter reads single-line answers from an input stream.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask writes message and returns the trimmed line typed in reply. io.EOF is
// returned only when the stream ended before any input.
func (p *Prompter) Ask(message string) (string, error) {
	if _, err := fmt.Fprint(p.out, message); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question; only y or yes count as yes.
func (p *Prompter) Confirm(message string) (bool, error) {
	answer, err := p.Ask(message)
	if err != nil {
		return false, err
	}
	return parseYes(answer), nil
}

func parseYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
