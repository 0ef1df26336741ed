package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/commitmate/commitmate/internal/formatter"
	"github.com/commitmate/commitmate/internal/llm"
	"github.com/commitmate/commitmate/internal/ui"
)

type CommitOptions struct {
	// Backend is the explicit backend choice ("0", "ollama", "1", "gpt", ...).
	// Empty means ask the user.
	Backend   string
	AddAll    bool
	NoVerify  bool
	DryRun    bool
	AutoYes   bool
	ErrWriter io.Writer
	OutWriter io.Writer
}

type CommitFlow struct {
	git          GitClient
	newGenerator GeneratorFactory
	prompter     Prompter
	editor       Editor
	opts         CommitOptions
}

func NewCommitFlow(git GitClient, newGenerator GeneratorFactory, prompter Prompter, opts CommitOptions) *CommitFlow {
	if opts.ErrWriter == nil {
		opts.ErrWriter = io.Discard
	}
	if opts.OutWriter == nil {
		opts.OutWriter = io.Discard
	}
	return &CommitFlow{
		git:          git,
		newGenerator: newGenerator,
		prompter:     prompter,
		editor:       ExternalEditor{},
		opts:         opts,
	}
}

func (f *CommitFlow) SetEditor(e Editor) {
	f.editor = e
}

func (f *CommitFlow) Run(ctx context.Context) error {
	if err := f.handleStaging(ctx); err != nil {
		return err
	}

	diff, err := f.git.StagedDiff(ctx)
	if err != nil {
		return fmt.Errorf("failed to get git diff: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return ErrNoChanges
	}

	generator, err := f.selectGenerator(ctx)
	if err != nil {
		return err
	}

	message, accepted, err := f.runCommitLoop(ctx, generator, diff)
	if err != nil {
		return err
	}
	if !accepted {
		ui.Info(f.opts.ErrWriter, "Commit cancelled by user")
		return nil
	}

	return f.commitAndPush(ctx, message)
}

func (f *CommitFlow) handleStaging(ctx context.Context) error {
	if !f.opts.AddAll {
		return nil
	}
	if err := f.git.AddAll(ctx); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}
	ui.Info(f.opts.ErrWriter, "All changes have been added to the staging area.")
	return nil
}

func (f *CommitFlow) selectGenerator(ctx context.Context) (llm.Generator, error) {
	choice := f.opts.Backend
	if choice == "" && !f.opts.AutoYes {
		var err error
		choice, err = f.prompter.Ask(ctx, "\nSelect model (0 for Ollama, 1 for ChatGPT): ")
		if err != nil {
			return nil, err
		}
	}

	backend, ok := llm.ParseBackend(choice)
	if !ok {
		if choice != "" || !f.opts.AutoYes {
			ui.Warn(f.opts.ErrWriter, "Invalid model selection. Defaulting to ChatGPT.")
		}
		backend = llm.BackendOpenAI
	}

	generator, err := f.newGenerator(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to set up %s backend: %w", backend, err)
	}
	return generator, nil
}

// runCommitLoop regenerates until the user accepts a message or quits.
func (f *CommitFlow) runCommitLoop(ctx context.Context, generator llm.Generator, diff string) (string, bool, error) {
	for {
		message, err := f.generateCommitMessage(ctx, generator, diff)
		if err != nil {
			return "", false, err
		}

		if f.opts.AutoYes && message != "" {
			ui.Info(f.opts.ErrWriter, "Auto-confirming commit message (--yes is set)")
			return message, true, nil
		}

		answer, err := f.prompter.Ask(ctx,
			"\nType 'y' to accept this commit message, 'e' to edit, 'q' to quit, or press Enter to regenerate: ")
		if err != nil {
			return "", false, err
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			if message == "" {
				ui.Warn(f.opts.ErrWriter, "Cannot commit an empty message.")
				break
			}
			return message, true, nil
		case "e", "edit":
			edited, err := f.editor.Edit(message)
			if err != nil {
				return "", false, err
			}
			if edited != "" {
				return formatter.FormatCommitMessage(edited), true, nil
			}
			if message != "" {
				ui.Info(f.opts.ErrWriter, "Empty message provided, using original message")
				return message, true, nil
			}
		case "q", "quit":
			return "", false, nil
		}

		ui.Info(f.opts.ErrWriter, "Regenerating commit message...")
	}
}

func (f *CommitFlow) generateCommitMessage(ctx context.Context, generator llm.Generator, diff string) (string, error) {
	raw, err := ui.Run(fmt.Sprintf("Generating commit message with %s...", generator.Name()), func() (string, error) {
		return generator.Generate(ctx, diff)
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate commit message: %w", err)
	}

	message := formatter.FormatCommitMessage(raw)
	ui.Heading(f.opts.ErrWriter, "Suggested Commit Message:")
	fmt.Fprintln(f.opts.OutWriter, message)
	return message, nil
}

func (f *CommitFlow) buildCommitArgs() []string {
	var args []string
	if f.opts.NoVerify {
		args = append(args, "--no-verify")
	}
	return args
}

func (f *CommitFlow) commitAndPush(ctx context.Context, message string) error {
	if f.opts.DryRun {
		ui.Info(f.opts.ErrWriter, "Dry run mode, no actual commit")
		return nil
	}

	if err := f.git.Commit(ctx, message, f.buildCommitArgs()...); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	ui.Success(f.opts.ErrWriter, "Committed successfully!")

	branch, err := f.git.CurrentBranch(ctx)
	if err != nil {
		ui.Warn(f.opts.ErrWriter, "Could not determine the current branch. Please push manually if needed.")
		return nil
	}

	push, err := f.confirm(ctx, fmt.Sprintf("\nDo you want to push to branch '%s'? (y/N): ", branch))
	if err != nil {
		return err
	}
	if !push {
		ui.Info(f.opts.ErrWriter, "🚫 Push skipped.")
		return nil
	}

	if err := f.git.Push(ctx, branch); err != nil {
		return fmt.Errorf("failed to push changes: %w", err)
	}
	ui.Success(f.opts.ErrWriter, "Changes pushed to '%s' successfully!", branch)
	return nil
}

func (f *CommitFlow) confirm(ctx context.Context, question string) (bool, error) {
	if f.opts.AutoYes {
		return true, nil
	}
	return f.prompter.Confirm(ctx, question)
}
