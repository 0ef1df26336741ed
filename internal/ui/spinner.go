package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner shows progress on stderr while a backend request is in flight.
// It is a no-op unless stderr is a terminal.
type Spinner struct {
	s       *spinner.Spinner
	enabled bool
}

func NewSpinner(message string) *Spinner {
	return newSpinner(message, os.Stderr, stderrIsTerminal())
}

func stderrIsTerminal() bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newSpinner(message string, w io.Writer, enabled bool) *Spinner {
	if !enabled {
		return &Spinner{}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w), spinner.WithHiddenCursor(true))
	s.Suffix = " " + message
	return &Spinner{s: s, enabled: true}
}

func (sp *Spinner) Start() {
	if sp.enabled {
		sp.s.Start()
	}
}

func (sp *Spinner) Stop() {
	if sp.enabled {
		sp.s.Stop()
	}
}

// Run shows a spinner with message until fn returns.
func Run[T any](message string, fn func() (T, error)) (T, error) {
	return runWith(NewSpinner(message), fn)
}

func runWith[T any](sp *Spinner, fn func() (T, error)) (T, error) {
	sp.Start()
	defer sp.Stop()
	return fn()
}
