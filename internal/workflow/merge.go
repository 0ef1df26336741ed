package workflow

import (
	"context"
	"fmt"
	"io"

	"github.com/commitmate/commitmate/internal/gitutil"
	"github.com/commitmate/commitmate/internal/stringsutil"
	"github.com/commitmate/commitmate/internal/ui"
)

type MergeOptions struct {
	// DefaultTarget is offered first; "develop" when empty.
	DefaultTarget string
	// Target skips the interactive choice. It must still appear in the branch listing.
	Target    string
	Remote    string
	DryRun    bool
	AutoYes   bool
	ErrWriter io.Writer
}

// MergeFlow merges the current branch into a target branch and pushes the target.
type MergeFlow struct {
	git      GitClient
	prompter Prompter
	opts     MergeOptions
}

func NewMergeFlow(git GitClient, prompter Prompter, opts MergeOptions) *MergeFlow {
	if opts.DefaultTarget == "" {
		opts.DefaultTarget = "develop"
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.ErrWriter == nil {
		opts.ErrWriter = io.Discard
	}
	return &MergeFlow{git: git, prompter: prompter, opts: opts}
}

func (f *MergeFlow) Run(ctx context.Context) error {
	current, err := f.git.CurrentBranch(ctx)
	if err != nil {
		ui.Warn(f.opts.ErrWriter, "Could not determine the current branch.")
		return nil
	}

	target, ok, err := f.chooseTarget(ctx)
	if err != nil || !ok {
		return err
	}

	if target == current {
		ui.Warn(f.opts.ErrWriter, "Already on '%s'; nothing to merge.", target)
		return nil
	}

	ui.Heading(f.opts.ErrWriter, "🚀 Merging '%s' into '%s'...", current, target)

	steps := []struct {
		desc string
		run  func(context.Context) error
	}{
		{desc: "git checkout " + target, run: func(ctx context.Context) error { return f.git.Checkout(ctx, target) }},
		{desc: "git merge " + current, run: func(ctx context.Context) error { return f.git.Merge(ctx, current) }},
		{desc: "git push " + f.opts.Remote + " " + target, run: func(ctx context.Context) error { return f.git.Push(ctx, target) }},
	}

	if f.opts.DryRun {
		fmt.Fprintln(f.opts.ErrWriter, "Dry run mode, would run:")
		for _, step := range steps {
			fmt.Fprintf(f.opts.ErrWriter, "  %s\n", step.desc)
		}
		return nil
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			ui.Fail(f.opts.ErrWriter, "Merge failed. Resolve conflicts and try again.")
			return fmt.Errorf("failed to merge '%s' into '%s': %w", current, target, err)
		}
	}

	ui.Success(f.opts.ErrWriter, "Successfully merged '%s' into '%s'!", current, target)
	return nil
}

// chooseTarget returns ok=false when the user picked a branch that does not exist.
func (f *MergeFlow) chooseTarget(ctx context.Context) (string, bool, error) {
	if f.opts.Target != "" {
		if err := gitutil.ValidateBranchName(f.opts.Target); err != nil {
			return "", false, &ValidationError{Field: "target branch", Value: f.opts.Target, Reason: err.Error()}
		}
		return f.validateAgainstListing(f.opts.Target, f.listBranches(ctx))
	}

	useDefault, err := f.confirm(ctx, fmt.Sprintf("\nDo you want to merge into '%s'? (y/N): ", f.opts.DefaultTarget))
	if err != nil {
		return "", false, err
	}
	if useDefault {
		return f.opts.DefaultTarget, true, nil
	}

	branches := f.listBranches(ctx)
	ui.Heading(f.opts.ErrWriter, "Available branches:")
	for i, branch := range branches {
		fmt.Fprintf(f.opts.ErrWriter, "%d. %s\n", i+1, branch)
	}

	target, err := f.prompter.Ask(ctx, "\nEnter the branch name you want to merge into: ")
	if err != nil {
		return "", false, err
	}
	return f.validateAgainstListing(target, branches)
}

func (f *MergeFlow) validateAgainstListing(target string, branches []string) (string, bool, error) {
	if !stringsutil.Contains(branches, target) {
		ui.Warn(f.opts.ErrWriter, "Invalid branch selected. Aborting merge.")
		return "", false, nil
	}
	return target, true, nil
}

// listBranches treats a failed listing as empty.
func (f *MergeFlow) listBranches(ctx context.Context) []string {
	branches, err := f.git.ListBranches(ctx)
	if err != nil {
		ui.Warn(f.opts.ErrWriter, "Could not list branches: %v", err)
		return nil
	}
	return branches
}

func (f *MergeFlow) confirm(ctx context.Context, question string) (bool, error) {
	if f.opts.AutoYes {
		return true, nil
	}
	return f.prompter.Confirm(ctx, question)
}
