// Package git wraps the git command-line tool for the queries and mutations
// the commit and merge flows need.
package git

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/commitmate/commitmate/internal/gitcmd"
	"github.com/commitmate/commitmate/internal/gitutil"
	"github.com/commitmate/commitmate/internal/stringsutil"
	"go.uber.org/zap"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

type commandRunner interface {
	Run(ctx context.Context, args ...string) (gitcmd.Result, error)
	RunStreaming(ctx context.Context, stdout, stderr io.Writer, args ...string) (gitcmd.Result, error)
}

// Options configures a Client.
type Options struct {
	Dir    string
	Env    []string
	Remote string
	Logger *zap.Logger
	// Stdout and Stderr receive the output of mutating commands (commit, push, checkout, merge).
	Stdout io.Writer
	Stderr io.Writer
}

// Client runs git commands in a single working directory.
type Client struct {
	runner commandRunner
	remote string
	stdout io.Writer
	stderr io.Writer
}

func NewClient(opts Options) *Client {
	runner := gitcmd.Runner{Dir: opts.Dir, Env: opts.Env, Logger: opts.Logger}
	return newClient(runner, opts)
}

func newClient(runner commandRunner, opts Options) *Client {
	remote := opts.Remote
	if remote == "" {
		remote = "origin"
	}
	return &Client{
		runner: runner,
		remote: remote,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
}

// Remote returns the remote used for push and for stripping remote-tracking prefixes.
func (c *Client) Remote() string {
	return c.remote
}

func (c *Client) IsGitRepository(ctx context.Context) bool {
	result, err := c.runner.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && result.StdoutString(true) == "true"
}

// StagedDiff returns `git diff --cached`. Invalid UTF-8 is replaced with U+FFFD.
func (c *Client) StagedDiff(ctx context.Context) (string, error) {
	args := []string{"diff", "--cached"}
	result, err := c.runner.Run(ctx, args...)
	if err != nil {
		return "", gitutil.WrapGitError("git diff --cached failed", args, result, err)
	}
	return strings.ToValidUTF8(result.StdoutString(false), "�"), nil
}

func (c *Client) AddAll(ctx context.Context) error {
	return c.mutate(ctx, "git add failed", "add", "-A")
}

func (c *Client) Commit(ctx context.Context, message string, args ...string) error {
	commitArgs := append([]string{"commit", "-m", message}, args...)
	return c.mutate(ctx, "git commit failed", commitArgs...)
}

func (c *Client) Push(ctx context.Context, branch string) error {
	return c.mutate(ctx, "git push failed", "push", c.remote, branch)
}

func (c *Client) Checkout(ctx context.Context, branch string) error {
	return c.mutate(ctx, "git checkout failed", "checkout", branch)
}

func (c *Client) Merge(ctx context.Context, branch string) error {
	return c.mutate(ctx, "git merge failed", "merge", branch)
}

func (c *Client) mutate(ctx context.Context, action string, args ...string) error {
	result, err := c.runner.RunStreaming(ctx, c.stdout, c.stderr, args...)
	if err != nil {
		return gitutil.WrapGitError(action, args, result, err)
	}
	return nil
}

// CurrentBranch returns the checked-out branch name.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	args := []string{"rev-parse", "--abbrev-ref", "HEAD"}
	result, err := c.runner.Run(ctx, args...)
	if err != nil {
		return "", gitutil.WrapGitError("git rev-parse failed", args, result, err)
	}
	name := result.StdoutString(true)
	if name == "" || name == "HEAD" {
		return "", ErrDetachedHead
	}
	return name, nil
}

// ListBranches returns local and remote-tracking branch names as ParseBranchList does.
func (c *Client) ListBranches(ctx context.Context) ([]string, error) {
	args := []string{"branch", "--all"}
	result, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, gitutil.WrapGitError("git branch failed", args, result, err)
	}
	return ParseBranchList(result.StdoutString(false), c.remote), nil
}

// ParseBranchList normalizes `git branch --all` output: the current-branch
// marker and the "remotes/<remote>/" prefix are removed, symbolic refs and
// detached-HEAD placeholders are skipped, and the result is sorted and unique.
func ParseBranchList(output string, remote string) []string {
	remotePrefix := "remotes/" + remote + "/"
	names := make([]string, 0)
	for _, line := range stringsutil.SplitLines(output) {
		name := strings.TrimSpace(line)
		name = strings.TrimPrefix(name, "* ")
		name = strings.TrimPrefix(name, "+ ")
		name = strings.TrimSpace(name)
		if strings.HasPrefix(name, "(") || strings.Contains(name, " -> ") {
			continue
		}
		name = strings.TrimPrefix(name, remotePrefix)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return stringsutil.SortedUnique(names)
}
