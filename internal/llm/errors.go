package llm

import (
	"errors"
	"fmt"
)

var ErrMissingAPIKey = errors.New("API key not set; export OPENAI_API_KEY or run: commitmate config set openai.api_key YOUR_API_KEY")

// NetworkError reports a failed request to a generation backend. StatusCode is
// zero when no HTTP response was received.
type NetworkError struct {
	Backend    Backend
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s request failed with status code %d: %s", e.Backend, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s request failed with status code %d", e.Backend, e.StatusCode)
	default:
		return fmt.Sprintf("%s request failed: %v", e.Backend, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Hint returns remediation text for the user.
func (e *NetworkError) Hint() string {
	switch {
	case e.Backend == BackendOllama && e.StatusCode == 404:
		return "the model may not be pulled yet; run `ollama pull <model>` or set ollama.model."
	case e.Backend == BackendOllama:
		return "is the Ollama server running? Start it with `ollama serve` or set ollama.url."
	case e.StatusCode == 401:
		return "the API key was rejected; check OPENAI_API_KEY or openai.api_key."
	case e.StatusCode == 429:
		return "the API rate limit or quota was hit; wait and re-run."
	default:
		return "check your network connection and openai.api_base, then re-run."
	}
}
