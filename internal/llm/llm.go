// Package llm provides the commit message generators: a local Ollama server
// and an OpenAI-compatible chat-completion API.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/commitmate/commitmate/internal/config"
	"go.uber.org/zap"
)

// Backend names a message generation strategy.
type Backend string

const (
	BackendOllama Backend = "ollama"
	BackendOpenAI Backend = "openai"
)

// Generator turns a staged diff into a commit message.
type Generator interface {
	Name() string
	Generate(ctx context.Context, diff string) (string, error)
}

// ConnectionTester is implemented by generators that can verify their settings.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// Options are shared by all generators.
type Options struct {
	Timeout    time.Duration
	Logger     *zap.Logger
	HTTPClient *http.Client
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: o.Timeout}
}

// ParseBackend maps user input to a backend: "0"/"ollama" select the local
// server, "1"/"gpt"/"chatgpt"/"openai" the hosted API.
func ParseBackend(choice string) (Backend, bool) {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "0", "ollama":
		return BackendOllama, true
	case "1", "gpt", "chatgpt", "openai":
		return BackendOpenAI, true
	default:
		return "", false
	}
}

// New builds the generator for backend from cfg.
func New(backend Backend, cfg *config.Config, opts Options) (Generator, error) {
	switch backend {
	case BackendOllama:
		return NewOllamaClient(cfg, opts), nil
	case BackendOpenAI:
		return NewOpenAIClient(cfg, opts), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
