// Package workflow provides the commit and merge orchestration logic.
package workflow

import (
	"context"

	"github.com/commitmate/commitmate/internal/llm"
)

// GitClient abstracts git operations for testability.
type GitClient interface {
	StagedDiff(ctx context.Context) (string, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string, args ...string) error
	Push(ctx context.Context, branch string) error
	CurrentBranch(ctx context.Context) (string, error)
	ListBranches(ctx context.Context) ([]string, error)
	Checkout(ctx context.Context, branch string) error
	Merge(ctx context.Context, branch string) error
}

// GeneratorFactory builds the message generator once the backend is known.
type GeneratorFactory func(backend llm.Backend) (llm.Generator, error)

// Runner is a flow that can be started from the interactive session.
type Runner interface {
	Run(ctx context.Context) error
}
