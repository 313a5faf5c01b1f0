// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// geminiAPIBase is the Gemini REST endpoint. Package-level var for test
// substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini calls the Gemini generateContent REST API.
type Gemini struct {
	client *http.Client
	apiKey string
	model  string
	cfg    types.LLMConfig
}

// NewGemini validates credentials and builds the strategy.
func NewGemini(client *http.Client, cfg types.LLMConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, apiKey: cfg.APIKey, model: model, cfg: cfg}, nil
}

// Name returns the registry name.
func (g *Gemini) Name() string { return "gemini" }

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Summarize sends one generateContent request and parses the JSON payload.
func (g *Gemini) Summarize(ctx context.Context, title, abstract string) (*types.PaperSummary, error) {
	prompt, err := renderPrompt(title, abstract)
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("rendering prompt: %w", err))
	}

	maxTokens := g.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: systemPrompt + "\n\n" + prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:      g.cfg.Temperature,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: "application/json",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("marshaling request: %w", err))
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent", geminiAPIBase, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, RequestFailed(fmt.Errorf("calling generateContent: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, RequestFailed(fmt.Errorf("generateContent returned %d: %s", resp.StatusCode, string(body)))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, Malformed(fmt.Errorf("decoding response: %w", err))
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, Malformed(fmt.Errorf("empty candidates"))
	}

	return parsePayload(gr.Candidates[0].Content.Parts[0].Text)
}
