package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commitmate/commitmate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaForServer(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Defaults()
	cfg.Ollama.URL = server.URL + "/api/generate"
	return NewOllamaClient(cfg, Options{HTTPClient: server.Client()})
}

func TestOllamaClient_GenerateReturnsResponseField(t *testing.T) {
	var got ollamaRequest
	client := newOllamaForServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2:1b","response":"  Fix null check in parser.\n","done":true}`))
	})

	message, err := client.Generate(context.Background(), "+if x != nil {")
	require.NoError(t, err)

	assert.Equal(t, "  Fix null check in parser.\n", message)
	assert.Equal(t, "llama3.2:1b", got.Model)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Prompt, "+if x != nil {")
}

func TestOllamaClient_StreamFalseIsSerialized(t *testing.T) {
	client := newOllamaForServer(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, false, raw["stream"])
		assert.Contains(t, raw, "model")
		assert.Contains(t, raw, "prompt")
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	})

	_, err := client.Generate(context.Background(), "diff")
	require.NoError(t, err)
}

func TestOllamaClient_NonOKStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusCreated} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newOllamaForServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":"model not found"}`))
			})

			message, err := client.Generate(context.Background(), "diff")
			assert.Empty(t, message)

			var netErr *NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, status, netErr.StatusCode)
			assert.Equal(t, BackendOllama, netErr.Backend)
			assert.Contains(t, netErr.Body, "model not found")
		})
	}
}

func TestOllamaClient_InvalidJSON(t *testing.T) {
	client := newOllamaForServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Generate(context.Background(), "diff")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "invalid response body")
}

func TestOllamaClient_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	cfg := config.Defaults()
	cfg.Ollama.URL = url + "/api/generate"
	client := NewOllamaClient(cfg, Options{})

	_, err := client.Generate(context.Background(), "diff")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
}

func TestOllamaClient_TestConnection(t *testing.T) {
	client := newOllamaForServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"OK"}`))
	})
	assert.NoError(t, client.TestConnection(context.Background()))
}

func TestOllamaClient_DefaultsWhenUnset(t *testing.T) {
	client := NewOllamaClient(&config.Config{}, Options{})
	assert.Equal(t, config.DefaultOllamaURL, client.url)
	assert.Equal(t, config.DefaultOllamaModel, client.model)
}
