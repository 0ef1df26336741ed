package workflow

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("  first answer \nlast"), &out)

	answer, err := p.Ask(context.Background(), "Question? ")
	require.NoError(t, err)
	assert.Equal(t, "first answer", answer)

	answer, err = p.Ask(context.Background(), "Again? ")
	require.NoError(t, err)
	assert.Equal(t, "last", answer)

	_, err = p.Ask(context.Background(), "Once more? ")
	assert.ErrorIs(t, err, ErrInputClosed)

	assert.Equal(t, "Question? Again? Once more? ", out.String())
}

func TestLinePrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "Y\n", want: true},
		{input: "yes\n", want: true},
		{input: " YES \n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "yep\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := NewLinePrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := p.Confirm(context.Background(), "ok? ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTerminalPrompter_RejectsNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	_, err = NewTerminalPrompter(f, &bytes.Buffer{})
	assert.ErrorContains(t, err, "--yes")
}

func TestStripComments(t *testing.T) {
	input := "Fix parser\n\nHandle empty input\n# ignored line\n  # also ignored\n"
	assert.Equal(t, "Fix parser\n\nHandle empty input", stripComments(input))
	assert.Empty(t, stripComments("# only comments\n\n"))
}

func TestGetEditor(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	assert.Equal(t, "vi", getEditor())

	t.Setenv("VISUAL", "nano")
	assert.Equal(t, "nano", getEditor())

	t.Setenv("EDITOR", "code --wait")
	assert.Equal(t, "code --wait", getEditor())
}

func TestExternalEditor_Edit(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}

	script := t.TempDir() + "/editor.sh"
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf 'Rewritten message\\n# note\\n' > \"$1\"\n"), 0o755))
	t.Setenv("EDITOR", script)

	edited, err := ExternalEditor{}.Edit("Original")
	require.NoError(t, err)
	assert.Equal(t, "Rewritten message", edited)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "config key", Value: "role", Reason: "unknown"}
	assert.Equal(t, `invalid config key "role": unknown`, err.Error())
	assert.Contains(t, err.Hint(), "config key")
}

func TestLinePrompter_AskReturnsWhenContextCancelled(t *testing.T) {
	in, feed := io.Pipe()
	defer in.Close()
	p := NewLinePrompter(in, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(ctx, "Do you want to make a commit? (y/N): ")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Ask kept blocking after the context was cancelled")
	}

	// The interrupted read is picked up by the next question.
	go func() { _, _ = feed.Write([]byte("yes\n")) }()
	answer, err := p.Ask(context.Background(), "again? ")
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
}

func TestLinePrompter_ConfirmWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewLinePrompter(strings.NewReader("y\n"), &bytes.Buffer{})
	ok, err := p.Confirm(ctx, "ok? ")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)

	ok, err = p.Confirm(context.Background(), "ok? ")
	require.NoError(t, err)
	assert.True(t, ok)
}
