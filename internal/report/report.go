// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a pipeline result into the Chinese-language
// digest that gets mailed out, in Markdown or HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

const defaultSubjectTemplate = "学术周报 - {date}"

// Generator renders pipeline results. The zero value is not usable;
// construct with New.
type Generator struct {
	cfg types.ReportConfig

	// now is stubbed in tests for a stable date string.
	now func() time.Time
}

func New(cfg types.ReportConfig) *Generator {
	return &Generator{cfg: cfg, now: time.Now}
}

// Subject expands the configured subject template, replacing "{date}"
// with the run date.
func (g *Generator) Subject() string {
	tmpl := g.cfg.SubjectTemplate
	if tmpl == "" {
		tmpl = defaultSubjectTemplate
	}
	return strings.ReplaceAll(tmpl, "{date}", g.dateStr())
}

// Render produces the digest in the configured format: "markdown"
// (default) or "html".
func (g *Generator) Render(res *types.PipelineResult) (string, error) {
	switch g.cfg.Format {
	case "", "markdown":
		return g.Markdown(res)
	case "html":
		return g.HTML(res)
	default:
		return "", fmt.Errorf("unknown report format %q", g.cfg.Format)
	}
}

func (g *Generator) dateStr() string {
	return g.now().Format("2006-01-02")
}

// paperView is the per-paper shape the templates consume.
type paperView struct {
	Index      int
	Title      string
	URL        string
	Authors    string
	Year       string
	OneLine    string
	Background string
	Method     string
	Results    string
	Score      string
}

// reportView is the top-level template payload.
type reportView struct {
	Date         string
	Papers       []paperView
	LowRelevance int
	Failures     []types.Failure
	Skipped      int
}

func (g *Generator) view(res *types.PipelineResult) reportView {
	v := reportView{
		Date:         g.dateStr(),
		LowRelevance: len(res.LowRelevance),
		Failures:     res.Failures,
		Skipped:      len(res.Skipped),
	}
	for i, rec := range res.Records {
		p := paperView{
			Index: i + 1,
			Title: "未知标题",
			URL:   rec.Link.CanonicalURL,
		}
		if rec.Metadata != nil {
			if rec.Metadata.Title != "" {
				p.Title = rec.Metadata.Title
			}
			p.Authors = strings.Join(rec.Metadata.Authors, ", ")
			p.Year = rec.Metadata.Year
		}
		if rec.Summary != nil {
			p.OneLine = rec.Summary.OneLine
			p.Background = rec.Summary.Background
			p.Method = rec.Summary.Method
			p.Results = rec.Summary.Results
			p.Score = fmt.Sprintf("%.1f", rec.Summary.RelevanceScore)
		}
		v.Papers = append(v.Papers, p)
	}
	return v
}
