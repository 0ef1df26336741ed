package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/commitmate/commitmate/internal/config"
	"github.com/commitmate/commitmate/internal/formatter"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are an expert in generating clear and useful commit messages."

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient generates messages with an OpenAI-compatible chat-completion API.
type OpenAIClient struct {
	apiKey         string
	model          string
	temperature    float32
	style          string
	promptTemplate string
	client         chatCompleter
	log            *zap.Logger
}

func NewOpenAIClient(cfg *config.Config, opts Options) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.APIBase != "" {
		clientConfig.BaseURL = cfg.OpenAI.APIBase
	}
	clientConfig.HTTPClient = opts.httpClient()

	model := cfg.OpenAI.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey:         cfg.OpenAI.APIKey,
		model:          model,
		temperature:    cfg.OpenAI.Temperature,
		style:          cfg.Style,
		promptTemplate: cfg.PromptTemplate,
		client:         openai.NewClientWithConfig(clientConfig),
		log:            opts.logger(),
	}
}

func (c *OpenAIClient) Name() string {
	return fmt.Sprintf("ChatGPT (%s)", c.model)
}

// Generate returns the first choice with any surrounding code fence removed.
func (c *OpenAIClient) Generate(ctx context.Context, diff string) (string, error) {
	prompt, err := formatter.BuildPrompt(c.promptTemplate, c.style, diff)
	if err != nil {
		return "", err
	}
	c.log.Debug("requesting commit message",
		zap.String("backend", string(BackendOpenAI)),
		zap.String("model", c.model),
		zap.Int("diff_bytes", len(diff)),
	)

	content, err := c.complete(ctx, prompt, c.temperature)
	if err != nil {
		return "", err
	}
	return formatter.StripCodeFence(content), nil
}

func (c *OpenAIClient) TestConnection(ctx context.Context) error {
	_, err := c.complete(ctx, "Reply with OK.", 0)
	return err
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	// go-openai omits a zero temperature, which the API reads as 1.
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", toNetworkError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toNetworkError(err error) error {
	netErr := &NetworkError{Backend: BackendOpenAI, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		netErr.StatusCode = apiErr.HTTPStatusCode
		netErr.Body = apiErr.Message
	case errors.As(err, &reqErr):
		netErr.StatusCode = reqErr.HTTPStatusCode
	}
	return netErr
}
