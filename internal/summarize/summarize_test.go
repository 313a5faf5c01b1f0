// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

func init() {
	retryBase = time.Millisecond
}

func validSummary() *types.PaperSummary {
	return &types.PaperSummary{
		OneLine:        "提出一种新的注意力机制。",
		Background:     "Transformer 计算开销大。",
		Method:         "线性化注意力。",
		Results:        "速度提升三倍，精度不降。",
		RelevanceScore: 8.5,
	}
}

// scripted returns one outcome per call, in order; the last outcome
// repeats.
type scripted struct {
	calls     int
	summaries []*types.PaperSummary
	errs      []error
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Summarize(context.Context, string, string) (*types.PaperSummary, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.summaries) {
		idx = len(s.summaries) - 1
	}
	if s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	return s.summaries[idx], nil
}

func TestValidate(t *testing.T) {
	t.Run("valid passes unchanged", func(t *testing.T) {
		s := validSummary()
		warnings, err := Validate(s)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, 8.5, s.RelevanceScore)
	})

	t.Run("score above bound clamped with warning", func(t *testing.T) {
		s := validSummary()
		s.RelevanceScore = 12.0
		warnings, err := Validate(s)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, 10.0, s.RelevanceScore)
	})

	t.Run("score below bound clamped with warning", func(t *testing.T) {
		s := validSummary()
		s.RelevanceScore = 0.2
		warnings, err := Validate(s)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, 1.0, s.RelevanceScore)
	})

	t.Run("boundary scores accepted", func(t *testing.T) {
		for _, score := range []float64{1.0, 10.0} {
			s := validSummary()
			s.RelevanceScore = score
			warnings, err := Validate(s)
			require.NoError(t, err)
			assert.Empty(t, warnings)
			assert.Equal(t, score, s.RelevanceScore)
		}
	})

	t.Run("missing field rejected", func(t *testing.T) {
		s := validSummary()
		s.Results = "  "
		_, err := Validate(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "results")
	})

	t.Run("nil summary rejected", func(t *testing.T) {
		_, err := Validate(nil)
		require.Error(t, err)
	})
}

func TestWithRetry_RecoversFromRequestFailure(t *testing.T) {
	s := &scripted{
		summaries: []*types.PaperSummary{nil, validSummary()},
		errs:      []error{RequestFailed(errors.New("boom")), nil},
	}

	got, err := WithRetry(s, 2).Summarize(context.Background(), "t", "a")
	require.NoError(t, err)
	assert.Equal(t, 8.5, got.RelevanceScore)
	assert.Equal(t, 2, s.calls)
}

func TestWithRetry_MalformedAfterBudget(t *testing.T) {
	incomplete := validSummary()
	incomplete.Results = "" // provider keeps omitting a required field
	s := &scripted{
		summaries: []*types.PaperSummary{incomplete},
		errs:      []error{nil},
	}

	_, err := WithRetry(s, 2).Summarize(context.Background(), "t", "a")
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Equal(t, 3, s.calls, "1 initial + 2 retries")
}

func TestNew_Registry(t *testing.T) {
	client := &http.Client{}

	_, err := New(client, types.LLMConfig{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = New(client, types.LLMConfig{APIKey: "sk-test"})
	require.NoError(t, err, "empty provider selects the default")

	_, err = New(client, types.LLMConfig{Provider: "gemini", APIKey: "g-test"})
	require.NoError(t, err)

	_, err = New(client, types.LLMConfig{Provider: "openai"})
	require.Error(t, err, "missing key fails at configuration time")

	_, err = New(client, types.LLMConfig{Provider: "claude", APIKey: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}

const validPayload = `{"summary":"一句话总结","background":"背景","method":"方法","results":"结果","relevance_score":7.0}`

func TestOpenAI_Summarize(t *testing.T) {
	var gotAuth, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, validPayload)
	}))
	defer ts.Close()

	o, err := NewOpenAI(ts.Client(), types.LLMConfig{
		APIKey:      "sk-test",
		BaseURL:     ts.URL,
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	require.NoError(t, err)

	got, err := o.Summarize(context.Background(), "Linear Attention", "We linearize attention.")
	require.NoError(t, err)
	assert.Equal(t, "一句话总结", got.OneLine)
	assert.Equal(t, 7.0, got.RelevanceScore)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Contains(t, gotBody, `"json_object"`)
	assert.Contains(t, gotBody, "Linear Attention")
}

func TestOpenAI_ErrorKinds(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantMalformed bool
	}{
		{
			"http error is request failure",
			func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			false,
		},
		{
			"empty choices is malformed",
			func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `{"choices":[]}`) },
			true,
		},
		{
			"non-JSON content is malformed",
			func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"choices":[{"message":{"content":"sorry, no"}}]}`)
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			o, err := NewOpenAI(ts.Client(), types.LLMConfig{APIKey: "sk", BaseURL: ts.URL})
			require.NoError(t, err)

			_, err = o.Summarize(context.Background(), "t", "a")
			require.Error(t, err)
			assert.Equal(t, tt.wantMalformed, IsMalformed(err))
		})
	}
}

func TestParsePayload_FencedJSON(t *testing.T) {
	got, err := parsePayload("```json\n" + validPayload + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "方法", got.Method)
}

func TestGemini_Summarize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "g-test", r.Header.Get("x-goog-api-key"))
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, validPayload)
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	g, err := NewGemini(ts.Client(), types.LLMConfig{APIKey: "g-test"})
	require.NoError(t, err)

	got, err := g.Summarize(context.Background(), "t", "a")
	require.NoError(t, err)
	assert.Equal(t, "结果", got.Results)
}
