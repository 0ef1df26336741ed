package gitutil

import (
	"fmt"
	"strings"

	"github.com/commitmate/commitmate/internal/gitcmd"
)

// CommandError reports a git invocation that failed or exited non-zero.
type CommandError struct {
	Action   string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s: %v", e.Action, e.Stderr, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Hint returns remediation text for the user.
func (e *CommandError) Hint() string {
	return fmt.Sprintf("`git %s` exited with status %d; fix the repository state and re-run.",
		strings.Join(e.Args, " "), e.ExitCode)
}

// WrapGitError builds a CommandError that prefers git stderr output when present.
func WrapGitError(action string, args []string, result gitcmd.Result, err error) error {
	return &CommandError{
		Action:   action,
		Args:     args,
		ExitCode: result.ExitCode,
		Stderr:   result.StderrString(true),
		Err:      err,
	}
}
