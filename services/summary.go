package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"arxiv-radar/config"
)

// summaryPrompt is the fixed prompt template. Temperature stays above zero,
// so results are not reproducible run to run.
const summaryPrompt = "Summarize the following AI paper abstract in two sentences:\nAbstract: %s\nSummary:"

const summaryTemperature = 0.9

// Summarizer compresses an abstract into a short summary via the OpenAI
// chat-completions API.
type Summarizer struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewSummarizer creates a new abstract summarizer.
func NewSummarizer(cfg *config.Config, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		Config: cfg,
		Logger: logger,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Summarize returns the trimmed first-choice text for the fixed prompt.
// Any failure here is fatal for the paper being ingested.
func (s *Summarizer) Summarize(ctx context.Context, abstract string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: s.Config.OpenAIModel,
		Messages: []chatCompletionMsg{
			{Role: "user", Content: fmt.Sprintf(summaryPrompt, abstract)},
		},
		MaxTokens:   s.Config.OpenAIMaxTokens,
		Temperature: summaryTemperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.Config.OpenAIBaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.Config.OpenAIAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	defer resp.Body.Close()

	var cr chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrSummarizationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		if cr.Error != nil {
			return "", fmt.Errorf("%w: %s", ErrSummarizationFailed, cr.Error.Message)
		}
		return "", fmt.Errorf("%w: HTTP %d", ErrSummarizationFailed, resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrSummarizationFailed)
	}

	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
