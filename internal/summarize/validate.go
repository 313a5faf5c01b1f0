// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// Score bounds for the relevance rating.
const (
	MinScore = 1.0
	MaxScore = 10.0
)

// Validate enforces the summary schema regardless of which strategy
// produced it: all text fields non-empty, score within [1, 10]. Missing
// text fields are a hard error. An out-of-range score is clamped to the
// nearest bound in place and recorded as a warning, not a failure, since
// minor scoring drift is expected model noise.
func Validate(s *types.PaperSummary) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("nil summary")
	}

	var missing []string
	for field, value := range map[string]string{
		"summary":    s.OneLine,
		"background": s.Background,
		"method":     s.Method,
		"results":    s.Results,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	var warnings []string
	switch {
	case s.RelevanceScore < MinScore:
		warnings = append(warnings, fmt.Sprintf("relevance_score %.1f below bound, clamped to %.1f", s.RelevanceScore, MinScore))
		s.RelevanceScore = MinScore
	case s.RelevanceScore > MaxScore:
		warnings = append(warnings, fmt.Sprintf("relevance_score %.1f above bound, clamped to %.1f", s.RelevanceScore, MaxScore))
		s.RelevanceScore = MaxScore
	}
	return warnings, nil
}
