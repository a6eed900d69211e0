// Package pipeline orchestrates report generation: load a fresh snapshot,
// filter it to the period, aggregate, optionally obtain the AI narrative,
// and assemble the document. Each call works on its own snapshot and
// returns a fresh result; nothing is cached between generations.
package pipeline

import (
	"context"
	"log"

	"github.com/cadfc/gestor/internal/analysis"
	"github.com/cadfc/gestor/internal/config"
	"github.com/cadfc/gestor/internal/database"
	"github.com/cadfc/gestor/internal/llm"
	"github.com/cadfc/gestor/internal/metrics"
	"github.com/cadfc/gestor/internal/period"
	"github.com/cadfc/gestor/internal/report"
)

// Generator produces period reports. Generation has no internal
// parallelism; callers that expose a trigger must keep one generation
// in flight per view at a time.
type Generator struct {
	db           *database.DB
	analyzer     *analysis.Analyzer
	organization string
}

// New creates a Generator, building the narrative provider from
// configuration. A missing credential is not an error here: the analyzer
// degrades to its fixed fallback result.
func New(cfg *config.Config, db *database.DB) *Generator {
	a := cfg.Analysis
	provider := llm.CreateProvider(a.Provider, a.Model, a.APIKeyEnv, a.OpenAIModel, a.OpenAIAPIKeyEnv)
	return NewWithProvider(db, provider, cfg.Organization.Name, a.MaxTokens)
}

// NewWithProvider creates a Generator with an explicit provider.
func NewWithProvider(db *database.DB, provider llm.Provider, organization string, maxTokens int) *Generator {
	return &Generator{
		db:           db,
		analyzer:     analysis.NewAnalyzer(provider, organization, maxTokens),
		organization: organization,
	}
}

// Organization returns the configured organization name.
func (g *Generator) Organization() string {
	return g.organization
}

// Result is everything one generation produced. It is transient: discard
// it wholesale if the caller abandoned the request.
type Result struct {
	Selector    period.Selector
	PeriodLabel string
	Filtered    *period.Filtered
	Warnings    []period.Warning
	Summary     metrics.Summary
	Narrative   *analysis.Narrative
	Document    *report.Document
}

// Markdown renders the result's document with the built-in renderer.
func (r *Result) Markdown(organization string) string {
	return report.RenderMarkdown(r.Document, organization)
}

// Generate runs the full pipeline for one period. withAnalysis controls
// the single narrative-service call; everything else is local and pure.
// Only the snapshot load can fail.
func (g *Generator) Generate(ctx context.Context, sel period.Selector, withAnalysis bool) (*Result, error) {
	snap, err := g.db.LoadAll()
	if err != nil {
		return nil, err
	}

	filtered, warnings := period.Filter(snap, sel)
	for _, w := range warnings {
		log.Printf("data quality: %s", w)
	}

	summary := metrics.Aggregate(filtered.Gatherings, filtered.Counseling, filtered.Activities)

	var narrative *analysis.Narrative
	if withAnalysis {
		narrative = g.analyzer.Analyze(ctx, summary, sel.Label())
	}

	return &Result{
		Selector:    sel,
		PeriodLabel: sel.Label(),
		Filtered:    filtered,
		Warnings:    warnings,
		Summary:     summary,
		Narrative:   narrative,
		Document:    report.Assemble(sel, summary, narrative, filtered),
	}, nil
}
