package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// SystemPrompt frames every request sent to the model.
const SystemPrompt = `You're an AI assistant for a Chrome extension that explains technical words in 4 beginner-level sentences. ` +
	`Your style must be: - Clear and friendly (not robotic) - No jargon or advanced terms - End with real-life examples - ` +
	`Final sentence: "Read more about it here → [link]". If the term is ambiguous, choose the most common meaning.`

// ModelExplainer asks an OpenAI-compatible chat completion endpoint for
// explanations. Every call is a single attempt.
type ModelExplainer struct {
	client openai.Client
	cfg    ModelConfig
}

// NewModelExplainer creates an explainer for cfg. httpClient may be nil.
func NewModelExplainer(cfg ModelConfig, httpClient *http.Client) (*ModelExplainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	slog.Debug("Model explainer created", "model", cfg.Model, "base_url", cfg.BaseURL)

	return &ModelExplainer{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

func (m *ModelExplainer) Explain(ctx context.Context, text string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: m.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(text),
		},
		MaxTokens:   openai.Int(m.cfg.MaxTokens),
		Temperature: openai.Float(m.cfg.Temperature),
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("HTTP %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyExplanation
	}
	explanation := strings.TrimSpace(completion.Choices[0].Message.Content)
	if explanation == "" {
		return "", ErrEmptyExplanation
	}
	return explanation, nil
}
