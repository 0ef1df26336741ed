package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/commitmate/commitmate/internal/config"
	"github.com/commitmate/commitmate/internal/formatter"
	"go.uber.org/zap"
)

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// OllamaClient generates messages with a local Ollama server's /api/generate endpoint.
type OllamaClient struct {
	url            string
	model          string
	style          string
	promptTemplate string
	http           *http.Client
	log            *zap.Logger
}

func NewOllamaClient(cfg *config.Config, opts Options) *OllamaClient {
	url := cfg.Ollama.URL
	if url == "" {
		url = config.DefaultOllamaURL
	}
	model := cfg.Ollama.Model
	if model == "" {
		model = config.DefaultOllamaModel
	}
	return &OllamaClient{
		url:            url,
		model:          model,
		style:          cfg.Style,
		promptTemplate: cfg.PromptTemplate,
		http:           opts.httpClient(),
		log:            opts.logger(),
	}
}

func (c *OllamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

// Generate returns the "response" field of the server reply unchanged.
func (c *OllamaClient) Generate(ctx context.Context, diff string) (string, error) {
	prompt, err := formatter.BuildPrompt(c.promptTemplate, c.style, diff)
	if err != nil {
		return "", err
	}
	c.log.Debug("requesting commit message",
		zap.String("backend", string(BackendOllama)),
		zap.String("model", c.model),
		zap.Int("diff_bytes", len(diff)),
	)
	return c.complete(ctx, prompt)
}

func (c *OllamaClient) TestConnection(ctx context.Context) error {
	_, err := c.complete(ctx, "Reply with OK.")
	return err
}

func (c *OllamaClient) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(ollamaRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &NetworkError{Backend: BackendOllama, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Backend: BackendOllama, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &NetworkError{
			Backend:    BackendOllama,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var decoded ollamaResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &NetworkError{Backend: BackendOllama, Err: fmt.Errorf("invalid response body: %w", err)}
	}
	c.log.Debug("ollama response received", zap.Int("response_bytes", len(decoded.Response)))
	return decoded.Response, nil
}
