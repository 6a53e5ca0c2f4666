package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int64   `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completion(content string) string {
	buf, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(buf)
}

func newModelServer(t *testing.T, status int, body string) (string, <-chan chatRequest) {
	t.Helper()

	requests := make(chan chatRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		buf, _ := io.ReadAll(r.Body)
		var req chatRequest
		_ = json.Unmarshal(buf, &req)
		requests <- req

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, requests
}

func testModelConfig(baseURL string) ModelConfig {
	return ModelConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "test-model",
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

func TestModelExplainer_Explain(t *testing.T) {
	t.Parallel()

	url, requests := newModelServer(t, http.StatusOK, completion("  Plants turn light into food.\n"))
	explainer, err := NewModelExplainer(testModelConfig(url), nil)
	require.NoError(t, err)

	explanation, err := explainer.Explain(t.Context(), "photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, "Plants turn light into food.", explanation)

	req := <-requests
	assert.Equal(t, "test-model", req.Model)
	assert.EqualValues(t, DefaultMaxTokens, req.MaxTokens)
	assert.InDelta(t, DefaultTemperature, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, SystemPrompt, req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "photosynthesis", req.Messages[1].Content)
}

func TestSystemPrompt_AsksForReadMoreSentence(t *testing.T) {
	t.Parallel()

	assert.Contains(t, SystemPrompt, "4 beginner-level sentences")
	assert.Contains(t, SystemPrompt, `Final sentence: "Read more about it here → [link]"`)
}

func TestModelExplainer_EmptyContent(t *testing.T) {
	t.Parallel()

	url, _ := newModelServer(t, http.StatusOK, completion("   "))
	explainer, err := NewModelExplainer(testModelConfig(url), nil)
	require.NoError(t, err)

	_, err = explainer.Explain(t.Context(), "photosynthesis")
	assert.ErrorIs(t, err, ErrEmptyExplanation)
}

func TestModelExplainer_HTTPError(t *testing.T) {
	t.Parallel()

	url, requests := newModelServer(t, http.StatusInternalServerError, `{"error":{"message":"upstream down"}}`)
	explainer, err := NewModelExplainer(testModelConfig(url), nil)
	require.NoError(t, err)

	_, err = explainer.Explain(t.Context(), "photosynthesis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.Len(t, requests, 1, "no retry")
}

func TestNewModelExplainer_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	cfg := testModelConfig("http://localhost")
	cfg.APIKey = ""
	_, err := NewModelExplainer(cfg, nil)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}
