// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences link extraction, resolution, fetching,
// deduplication and summarization over a batch of email bodies and
// assembles the ranked result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/dedupe"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/fetch"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/links"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/resolve"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/summarize"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

const (
	defaultMaxItems = 50
	defaultWorkers  = 4
)

// Pipeline runs one batch end to end. Construct with New; a Pipeline is
// safe for a single Run at a time.
type Pipeline struct {
	filter     *links.Filter
	resolver   *resolve.Resolver
	fetcher    fetch.Strategy
	summarizer summarize.Strategy

	maxItems int
	workers  int
	budget   time.Duration
	minScore float64

	known map[string]bool
	out   io.Writer
}

// New wires the stages from configuration. Strategy lookup and
// credential checks happen here, before any item is touched, so a
// misconfigured run aborts without burning network calls.
func New(cfg types.Config, out io.Writer) (*Pipeline, error) {
	if out == nil {
		out = io.Discard
	}

	filter := links.NewFilter(cfg.LinkFilter)
	resolver := resolve.New(resolve.NoRedirectClient(cfg.Resolver.HTTPConfig), filter, cfg.Resolver)

	timeout := cfg.Fetcher.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	base, err := fetch.New(client, cfg.Fetcher)
	if err != nil {
		return nil, fmt.Errorf("configuring fetcher: %w", err)
	}

	llm, err := summarize.New(client, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configuring summarizer: %w", err)
	}

	p := &Pipeline{
		filter:     filter,
		resolver:   resolver,
		fetcher:    fetch.WithRetry(base, cfg.Fetcher.RetryTimes),
		summarizer: summarize.WithRetry(llm, cfg.LLM.MaxRetries),
		maxItems:   cfg.Pipeline.MaxItems,
		workers:    cfg.Pipeline.Workers,
		budget:     cfg.Pipeline.Budget,
		minScore:   cfg.Report.MinRelevanceScore,
		out:        out,
	}
	if p.maxItems <= 0 {
		p.maxItems = defaultMaxItems
	}
	if p.workers <= 0 {
		p.workers = defaultWorkers
	}
	return p, nil
}

// SetKnown supplies identity keys already reported by earlier runs.
// Matching identities are dropped during deduplication and counted in
// KnownSkipped.
func (p *Pipeline) SetKnown(known map[string]bool) { p.known = known }

// outcome is the per-candidate result of the resolve+fetch stage.
type outcome struct {
	dedupe.Outcome
	resolveErr error
	skipped    bool
}

// Run processes a batch of email bodies. Per-item failures land in the
// result's ledger and never abort the batch; the returned error is
// reserved for context cancellation.
func (p *Pipeline) Run(ctx context.Context, emailBodies []string) (*types.PipelineResult, error) {
	var deadline time.Time
	if p.budget > 0 {
		deadline = time.Now().Add(p.budget)
	}

	candidates := p.filter.Apply(links.ExtractAll(emailBodies))
	if len(candidates) > p.maxItems {
		fmt.Fprintf(p.out, "capping batch at %d of %d candidate links\n", p.maxItems, len(candidates))
		candidates = candidates[:p.maxItems]
	}
	fmt.Fprintf(p.out, "processing %d candidate links from %d emails\n", len(candidates), len(emailBodies))

	outcomes := p.resolveAndFetch(ctx, candidates, deadline)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &types.PipelineResult{}

	var live []dedupe.Outcome
	for _, o := range outcomes {
		if o.skipped {
			res.Skipped = append(res.Skipped, o.Link.OriginalURL)
			continue
		}
		if o.resolveErr != nil {
			res.Failures = append(res.Failures, types.Failure{
				IdentityKey: o.Link.OriginalURL,
				Kind:        types.FailResolution,
				Detail:      o.resolveErr.Error(),
			})
		}
		live = append(live, o.Outcome)
	}

	collapsed := dedupe.Collapse(live, p.known)
	res.Duplicates = collapsed.Duplicates
	res.KnownSkipped = collapsed.KnownSkipped
	fmt.Fprintf(p.out, "deduplicated to %d papers (%d duplicate links, %d already reported)\n",
		len(collapsed.Entries), collapsed.Duplicates, collapsed.KnownSkipped)

	records := p.summarizeAll(ctx, collapsed.Entries, deadline)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	p.assemble(res, records)
	fmt.Fprintf(p.out, "run complete: %d ranked, %d low relevance, %d failed, %d skipped\n",
		len(res.Records), len(res.LowRelevance), len(res.Failures), len(res.Skipped))
	return res, nil
}

// resolveAndFetch runs the network-bound front half of the pipeline
// over a bounded worker pool. Results are written index-aligned so
// input order survives arbitrary completion order.
func (p *Pipeline) resolveAndFetch(ctx context.Context, candidates []types.RawLink, deadline time.Time) []outcome {
	outcomes := make([]outcome, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, c := range candidates {
		g.Go(func() error {
			if expired(deadline) || ctx.Err() != nil {
				outcomes[i] = outcome{skipped: true, Outcome: dedupe.Outcome{
					Link: types.ResolvedLink{OriginalURL: c.URL, CanonicalURL: c.URL},
				}}
				return nil
			}
			link, rerr := p.resolver.Resolve(ctx, c.URL)
			meta, ferr := p.fetcher.Fetch(ctx, link)
			outcomes[i] = outcome{
				Outcome:    dedupe.Outcome{Link: link, Metadata: meta, Err: ferr},
				resolveErr: rerr,
			}
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// summarizeAll produces one PaperRecord per deduplicated entry,
// index-aligned with entries.
func (p *Pipeline) summarizeAll(ctx context.Context, entries []dedupe.Entry, deadline time.Time) []types.PaperRecord {
	records := make([]types.PaperRecord, len(entries))

	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, e := range entries {
		rec := types.PaperRecord{IdentityKey: e.IdentityKey, Link: e.Link, Metadata: e.Metadata}

		if e.Metadata == nil {
			rec.Status = types.StatusFetchFailed
			if e.Err != nil {
				rec.Warnings = append(rec.Warnings, e.Err.Error())
			}
			records[i] = rec
			continue
		}

		g.Go(func() error {
			records[i] = p.summarizeOne(ctx, rec, deadline)
			return nil
		})
	}
	g.Wait()
	return records
}

func (p *Pipeline) summarizeOne(ctx context.Context, rec types.PaperRecord, deadline time.Time) types.PaperRecord {
	if expired(deadline) || ctx.Err() != nil {
		rec.Status = types.StatusSkipped
		return rec
	}

	summary, err := p.summarizer.Summarize(ctx, rec.Metadata.Title, rec.Metadata.Abstract)
	if err != nil {
		if summarize.IsMalformed(err) {
			rec.Status = types.StatusInvalid
		} else {
			rec.Status = types.StatusSummarizeFailed
		}
		rec.Warnings = append(rec.Warnings, err.Error())
		return rec
	}

	warnings, err := summarize.Validate(summary)
	if err != nil {
		rec.Status = types.StatusInvalid
		rec.Warnings = append(rec.Warnings, err.Error())
		return rec
	}
	rec.Summary = summary
	rec.Status = types.StatusComplete
	rec.Warnings = append(rec.Warnings, warnings...)
	return rec
}

// assemble splits records into ranked output, the low-relevance bucket
// and the failure ledger, then sorts the ranked set by descending score
// with first-appearance order breaking ties.
func (p *Pipeline) assemble(res *types.PipelineResult, records []types.PaperRecord) {
	for _, rec := range records {
		switch rec.Status {
		case types.StatusComplete:
			if rec.Summary.RelevanceScore < p.minScore {
				res.LowRelevance = append(res.LowRelevance, rec)
				continue
			}
			res.Records = append(res.Records, rec)
		case types.StatusSkipped:
			res.Skipped = append(res.Skipped, rec.IdentityKey)
		case types.StatusFetchFailed:
			res.Failures = append(res.Failures, failureFor(rec, types.FailFetch))
		case types.StatusInvalid:
			res.Failures = append(res.Failures, failureFor(rec, types.FailValidation))
		case types.StatusSummarizeFailed:
			res.Failures = append(res.Failures, failureFor(rec, types.FailSummarize))
		}
	}

	sort.SliceStable(res.Records, func(i, j int) bool {
		return res.Records[i].Summary.RelevanceScore > res.Records[j].Summary.RelevanceScore
	})
}

func failureFor(rec types.PaperRecord, kind types.FailureKind) types.Failure {
	detail := string(rec.Status)
	if len(rec.Warnings) > 0 {
		detail = rec.Warnings[len(rec.Warnings)-1]
	}
	return types.Failure{IdentityKey: rec.IdentityKey, Kind: kind, Detail: detail}
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}
