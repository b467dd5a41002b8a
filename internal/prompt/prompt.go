package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// ErrUnavailable means the user could not be asked, e.g. stdin is closed.
var ErrUnavailable = errors.New("prompt unavailable")

// Answer is the user's reply to a yes/no question.
type Answer int

const (
	Declined Answer = iota
	Confirmed
)

func (a Answer) String() string {
	if a == Confirmed {
		return "confirmed"
	}
	return "declined"
}

// Confirmer asks the user a yes/no question. When no answer can be obtained
// it returns an error wrapping ErrUnavailable.
type Confirmer interface {
	Confirm(question string) (Answer, error)
}

// New picks an interactive confirm for a terminal and a line reader otherwise.
func New(in *os.File, out io.Writer) Confirmer {
	fd := in.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return &TerminalConfirmer{}
	}
	return NewLineConfirmer(in, out)
}

// TerminalConfirmer shows a pterm interactive confirm.
type TerminalConfirmer struct{}

var _ Confirmer = (*TerminalConfirmer)(nil)

func (c *TerminalConfirmer) Confirm(question string) (Answer, error) {
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(question)
	if err != nil {
		return Declined, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ok {
		return Confirmed, nil
	}
	return Declined, nil
}

// LineConfirmer reads one answer per line. "y" and "yes" confirm, any other
// line declines, end of input is ErrUnavailable.
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

var _ Confirmer = (*LineConfirmer)(nil)

// NewLineConfirmer creates a LineConfirmer reading from in and asking on out.
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *LineConfirmer) Confirm(question string) (Answer, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", question)

	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return Declined, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if line == "" {
			fmt.Fprintln(c.out)
			return Declined, ErrUnavailable
		}
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return Confirmed, nil
	default:
		return Declined, nil
	}
}
