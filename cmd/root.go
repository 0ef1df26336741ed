package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/commitmate/commitmate/internal/config"
	"github.com/commitmate/commitmate/internal/git"
	"github.com/commitmate/commitmate/internal/llm"
	"github.com/commitmate/commitmate/internal/logging"
	"github.com/commitmate/commitmate/internal/workflow"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNotRepository = errors.New("current directory is not inside a git repository")

var (
	cfgFile   string
	verbose   bool
	dryRun    bool
	autoYes   bool
	backend   string
	addAll    bool
	noVerify  bool
	configErr error
	execCtx   = context.Background()
	rootCmd   = &cobra.Command{
		Use:   "commitmate",
		Short: "commitmate - AI commit message assistant",
		Long: `commitmate reads your staged changes, asks a local Ollama model or the ` +
			`OpenAI chat API for a commit message, commits it and optionally pushes ` +
			`or merges the branch.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			session := workflow.NewSession(a.prompter, a.commitFlow(), a.mergeFlow(""), autoYes)
			return session.Run(cmd.Context())
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

// SetContext sets the context passed to every command.
func SetContext(ctx context.Context) {
	execCtx = ctx
}

// RootCmd exposes the command tree for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the CLI and reports any error on stderr.
func Execute() error {
	return reportError(errWriter(), rootCmd.ExecuteContext(execCtx))
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $XDG_CONFIG_HOME/commitmate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Log git commands and backend requests")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Generate and show only, do not change the repository")
	rootCmd.PersistentFlags().BoolVarP(&autoYes, "yes", "y", false, "Automatically confirm every prompt")
	addCommitFlags(rootCmd)
}

func addCommitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&backend, "backend", "m", "",
		"Generation backend: 0/ollama or 1/openai (default from config, else ask)")
	cmd.Flags().BoolVarP(&addAll, "all", "a", false,
		"Automatically add all changes to the staging area before committing")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip pre-commit hooks")
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

// reportError prints err with its hint. A missing diff is reported but is not a failure.
func reportError(w io.Writer, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, workflow.ErrNoChanges) {
		fmt.Fprintln(w, "No staged changes found. Please stage your changes with 'git add'.")
		if !addAll {
			fmt.Fprintln(w, "Hint: You can use -a or --all to automatically add all changes to the staging area")
		}
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintln(w, "Error:", err)
	var hinter interface{ Hint() string }
	if errors.As(err, &hinter) {
		fmt.Fprintln(w, "Hint:", hinter.Hint())
	}
	return err
}

// app holds the collaborators shared by the commit and merge commands.
type app struct {
	ctx      context.Context
	cfg      *config.Config
	logger   *zap.Logger
	git      *git.Client
	prompter workflow.Prompter
}

var newPrompter = func() (workflow.Prompter, error) {
	if autoYes {
		return workflow.NewLinePrompter(os.Stdin, errWriter()), nil
	}
	return workflow.NewTerminalPrompter(os.Stdin, errWriter())
}

// newApp loads configuration and builds the git client. A prompter is only
// set up for interactive commands.
func newApp(ctx context.Context, interactive bool) (*app, error) {
	if configErr != nil {
		return nil, fmt.Errorf("configuration error: %w", configErr)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, verbose, errWriter())
	if err != nil {
		return nil, &workflow.ValidationError{Field: "log level", Value: cfg.LogLevel, Reason: err.Error()}
	}

	client := git.NewClient(git.Options{
		Remote: cfg.Remote,
		Logger: logger,
		Stdout: errWriter(),
		Stderr: errWriter(),
	})
	if !client.IsGitRepository(ctx) {
		return nil, errNotRepository
	}

	a := &app{ctx: ctx, cfg: cfg, logger: logger, git: client}
	if interactive {
		if a.prompter, err = newPrompter(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// newGenerator builds the selected backend. A missing API key offers the init
// wizard first when a user is there to answer.
func (a *app) newGenerator(b llm.Backend) (llm.Generator, error) {
	if b == llm.BackendOpenAI && !autoYes && a.prompter != nil {
		configured, err := ensureLLMConfigured(a.ctx, a.cfg, a.prompter, errWriter(), func() error {
			return runInitWizard(a.ctx, inReader(), errWriter(), a.cfg)
		})
		if err != nil {
			return nil, err
		}
		if configured {
			if a.cfg, err = config.GetConfig(); err != nil {
				return nil, err
			}
		}
	}
	return llm.New(b, a.cfg, llm.Options{Timeout: a.cfg.Timeout, Logger: a.logger})
}

func (a *app) commitFlow() *workflow.CommitFlow {
	choice := backend
	if choice == "" {
		choice = a.cfg.Backend
	}
	flow := workflow.NewCommitFlow(a.git, a.newGenerator, a.prompter, workflow.CommitOptions{
		Backend:   choice,
		AddAll:    addAll,
		NoVerify:  noVerify,
		DryRun:    dryRun,
		AutoYes:   autoYes,
		ErrWriter: errWriter(),
		OutWriter: outWriter(),
	})
	flow.SetEditor(workflow.ExternalEditor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	return flow
}

func (a *app) mergeFlow(target string) *workflow.MergeFlow {
	return workflow.NewMergeFlow(a.git, a.prompter, workflow.MergeOptions{
		DefaultTarget: a.cfg.MergeTarget,
		Target:        target,
		Remote:        a.git.Remote(),
		DryRun:        dryRun,
		AutoYes:       autoYes,
		ErrWriter:     errWriter(),
	})
}
