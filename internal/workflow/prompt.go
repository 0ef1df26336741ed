package workflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrInputClosed is returned when input ends before an answer is read.
var ErrInputClosed = errors.New("input closed before an answer was given")

// Prompter asks the user questions. Both methods return ctx.Err() when the
// context is cancelled while waiting for an answer.
type Prompter interface {
	// Confirm is true when the answer is "y" or "yes".
	Confirm(ctx context.Context, question string) (bool, error)
	// Ask returns the trimmed answer line.
	Ask(ctx context.Context, question string) (string, error)
}

type lineResult struct {
	line string
	err  error
}

// LinePrompter reads one line per question from an input stream.
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
	// pending is an in-flight read left behind by a cancelled Ask.
	pending chan lineResult
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(in), out: out}
}

// NewTerminalPrompter refuses a non-interactive stdin so flows never block on a pipe.
func NewTerminalPrompter(in *os.File, out io.Writer) (*LinePrompter, error) {
	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		return nil, errors.New("stdin is not a terminal, use --yes to skip interactive confirmation")
	}
	return NewLinePrompter(in, out), nil
}

func (p *LinePrompter) Ask(ctx context.Context, question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.readLine(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read user input: %w", err)
		}
		if line == "" {
			return "", ErrInputClosed
		}
	}
	return strings.TrimSpace(line), nil
}

// readLine waits for the next line or for ctx to end. A read interrupted by
// ctx is kept so its line is returned by the next call.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.pending == nil {
		result := make(chan lineResult, 1)
		go func() {
			line, err := p.reader.ReadString('\n')
			result <- lineResult{line: line, err: err}
		}()
		p.pending = result
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		return r.line, r.err
	}
}

func (p *LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Editor lets the user rewrite a message.
type Editor interface {
	Edit(message string) (string, error)
}

// ExternalEditor opens $EDITOR (then $VISUAL, then vi) on a temporary file.
type ExternalEditor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Edit returns the edited text with "#" comment lines removed, or "" when nothing is left.
func (e ExternalEditor) Edit(message string) (string, error) {
	tmpFile, err := os.CreateTemp("", "commitmate-msg-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpFileName := tmpFile.Name()
	defer os.Remove(tmpFileName)

	content := message + "\n\n# Lines starting with '#' are ignored. Leave empty to keep the suggestion.\n"
	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write to temporary file: %w", err)
	}
	tmpFile.Close()

	editorArgs := strings.Fields(getEditor())
	cmd := exec.Command(editorArgs[0], append(editorArgs[1:], tmpFileName)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	editedBytes, err := os.ReadFile(tmpFileName)
	if err != nil {
		return "", fmt.Errorf("failed to read edited message: %w", err)
	}
	return stripComments(string(editedBytes)), nil
}

func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func getEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if editor := strings.TrimSpace(os.Getenv("VISUAL")); editor != "" {
		return editor
	}
	return "vi"
}
