package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/commitmate/commitmate/internal/llm"
)

type fakeGit struct {
	diff          string
	diffErr       error
	branch        string
	branchErr     error
	branches      []string
	branchesErr   error
	commitErr     error
	pushErr       error
	checkoutErr   error
	mergeErr      error
	addAllErr     error
	commits       []string
	commitArgs    [][]string
	pushes        []string
	checkouts     []string
	merges        []string
	addAllCalls   int
	diffCalls     int
	listCalls     int
	mutationOrder []string
}

func (g *fakeGit) StagedDiff(context.Context) (string, error) {
	g.diffCalls++
	return g.diff, g.diffErr
}

func (g *fakeGit) AddAll(context.Context) error {
	g.addAllCalls++
	return g.addAllErr
}

func (g *fakeGit) Commit(_ context.Context, message string, args ...string) error {
	g.commits = append(g.commits, message)
	g.commitArgs = append(g.commitArgs, args)
	g.mutationOrder = append(g.mutationOrder, "commit")
	return g.commitErr
}

func (g *fakeGit) Push(_ context.Context, branch string) error {
	g.pushes = append(g.pushes, branch)
	g.mutationOrder = append(g.mutationOrder, "push "+branch)
	return g.pushErr
}

func (g *fakeGit) CurrentBranch(context.Context) (string, error) {
	return g.branch, g.branchErr
}

func (g *fakeGit) ListBranches(context.Context) ([]string, error) {
	g.listCalls++
	return g.branches, g.branchesErr
}

func (g *fakeGit) Checkout(_ context.Context, branch string) error {
	g.checkouts = append(g.checkouts, branch)
	g.mutationOrder = append(g.mutationOrder, "checkout "+branch)
	return g.checkoutErr
}

func (g *fakeGit) Merge(_ context.Context, branch string) error {
	g.merges = append(g.merges, branch)
	g.mutationOrder = append(g.mutationOrder, "merge "+branch)
	return g.mergeErr
}

func (g *fakeGit) mutations() int {
	return len(g.commits) + len(g.pushes) + len(g.checkouts) + len(g.merges)
}

// scriptedPrompter answers questions from a fixed list and records them.
type scriptedPrompter struct {
	answers   []string
	questions []string
}

func newScriptedPrompter(answers ...string) *scriptedPrompter {
	return &scriptedPrompter{answers: answers}
}

func (p *scriptedPrompter) Ask(ctx context.Context, question string) (string, error) {
	p.questions = append(p.questions, question)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.answers) == 0 {
		return "", ErrInputClosed
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return strings.TrimSpace(answer), nil
}

func (p *scriptedPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

type fakeGenerator struct {
	name     string
	messages []string
	err      error
	calls    int
	diffs    []string
}

func (g *fakeGenerator) Name() string {
	return g.name
}

func (g *fakeGenerator) Generate(_ context.Context, diff string) (string, error) {
	g.calls++
	g.diffs = append(g.diffs, diff)
	if g.err != nil {
		return "", g.err
	}
	if len(g.messages) == 0 {
		return "", errors.New("no scripted message")
	}
	idx := g.calls - 1
	if idx >= len(g.messages) {
		idx = len(g.messages) - 1
	}
	return g.messages[idx], nil
}

type recordingFactory struct {
	requested []llm.Backend
	gen       *fakeGenerator
	err       error
}

func (f *recordingFactory) build(backend llm.Backend) (llm.Generator, error) {
	f.requested = append(f.requested, backend)
	if f.err != nil {
		return nil, f.err
	}
	if f.gen.name == "" {
		f.gen.name = fmt.Sprintf("fake-%s", backend)
	}
	return f.gen, nil
}

type fakeEditor struct {
	result string
	err    error
	input  string
}

func (e *fakeEditor) Edit(message string) (string, error) {
	e.input = message
	return e.result, e.err
}

type countingRunner struct {
	calls int
	err   error
}

func (r *countingRunner) Run(context.Context) error {
	r.calls++
	return r.err
}
