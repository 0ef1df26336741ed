package workflow

import (
	"context"
)

// Session is the interactive entry point: commit first, otherwise offer a merge.
type Session struct {
	prompter Prompter
	commit   Runner
	merge    Runner
	autoYes  bool
}

func NewSession(prompter Prompter, commit, merge Runner, autoYes bool) *Session {
	return &Session{prompter: prompter, commit: commit, merge: merge, autoYes: autoYes}
}

func (s *Session) Run(ctx context.Context) error {
	makeCommit, err := s.confirm(ctx, "\nDo you want to make a commit? (y/N): ")
	if err != nil {
		return err
	}
	if makeCommit {
		return s.commit.Run(ctx)
	}

	doMerge, err := s.prompter.Confirm(ctx, "\nDo you want to do a merge? (y/N): ")
	if err != nil {
		return err
	}
	if doMerge {
		return s.merge.Run(ctx)
	}
	return nil
}

func (s *Session) confirm(ctx context.Context, question string) (bool, error) {
	if s.autoYes {
		return true, nil
	}
	return s.prompter.Confirm(ctx, question)
}
