package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner executes git commands with shared logging and output handling.
type Runner struct {
	Dir    string
	Env    []string
	Logger *zap.Logger
}

// Result contains captured stdout/stderr and the exit status of a git command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r Runner) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

// Run executes a git command and captures stdout/stderr.
func (r Runner) Run(ctx context.Context, args ...string) (Result, error) {
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	return r.exec(ctx, args, &outBuf, &errBuf, &outBuf, &errBuf)
}

// RunStreaming executes a git command with stdout/stderr copied to the given writers.
// Stderr is also captured so failures can report it.
func (r Runner) RunStreaming(ctx context.Context, stdout, stderr io.Writer, args ...string) (Result, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	var errBuf bytes.Buffer
	return r.exec(ctx, args, stdout, io.MultiWriter(stderr, &errBuf), nil, &errBuf)
}

func (r Runner) exec(
	ctx context.Context, args []string,
	stdout, stderr io.Writer,
	outBuf, errBuf *bytes.Buffer,
) (Result, error) {
	log := r.logger()
	log.Debug("running git command", zap.Strings("args", args), zap.String("dir", r.Dir))

	cmd := r.command(ctx, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()

	result := Result{Stderr: errBuf.Bytes()}
	if outBuf != nil {
		result.Stdout = outBuf.Bytes()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		result.ExitCode = -1
	}

	log.Debug("git command finished",
		zap.Strings("args", args),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, err
}
