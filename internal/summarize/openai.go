// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI calls an OpenAI-compatible chat-completions endpoint. The BaseURL
// override makes it work against relays (OpenRouter and the like) that
// speak the same protocol.
type OpenAI struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
	cfg     types.LLMConfig
}

// NewOpenAI validates credentials and builds the strategy. A missing API
// key is a configuration-time error.
func NewOpenAI(client *http.Client, cfg types.LLMConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{client: client, apiKey: cfg.APIKey, baseURL: baseURL, model: model, cfg: cfg}, nil
}

// Name returns the registry name.
func (o *OpenAI) Name() string { return "openai" }

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

// chatResponse is the response body from the chat completions API.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize sends one chat completion request and parses the JSON payload
// the prompt demands.
func (o *OpenAI) Summarize(ctx context.Context, title, abstract string) (*types.PaperSummary, error) {
	prompt, err := renderPrompt(title, abstract)
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("rendering prompt: %w", err))
	}

	maxTokens := o.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    o.cfg.Temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &chatFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("calling chat completions: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, RequestFailed(fmt.Errorf("chat completions returned %d: %s", resp.StatusCode, string(body)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, Malformed(fmt.Errorf("decoding response: %w", err))
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return nil, Malformed(fmt.Errorf("empty completion"))
	}

	return parsePayload(cr.Choices[0].Message.Content)
}

// parsePayload decodes the model's JSON content into a PaperSummary.
// Fenced code blocks are tolerated; anything else non-JSON is malformed.
func parsePayload(content string) (*types.PaperSummary, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var p summaryPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &p); err != nil {
		return nil, Malformed(fmt.Errorf("parsing summary JSON: %w", err))
	}
	return &types.PaperSummary{
		OneLine:        p.Summary,
		Background:     p.Background,
		Method:         p.Method,
		Results:        p.Results,
		RelevanceScore: p.RelevanceScore,
	}, nil
}
