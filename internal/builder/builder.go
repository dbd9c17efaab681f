// Package builder runs the full pipeline: parse or decode, compose, render.
package builder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gubarz/tripdoc/internal/compose"
	"github.com/gubarz/tripdoc/internal/document"
	"github.com/gubarz/tripdoc/internal/itinerary"
	"github.com/gubarz/tripdoc/internal/parser"
	"github.com/gubarz/tripdoc/internal/render"
)

// Result is a finished build
type Result struct {
	Document    *render.Document
	Blocks      []document.Block
	Diagnostics []parser.Diagnostic
}

// Builder turns generator output into a PDF
type Builder struct {
	composer *compose.Composer
	page     render.Options
	logger   *slog.Logger
}

// New creates a builder. page supplies the product label; the recipient is
// taken from each build context.
func New(composer *compose.Composer, page render.Options) *Builder {
	return &Builder{
		composer: composer,
		page:     page,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// FromText builds from marker text
func (b *Builder) FromText(ctx context.Context, bc itinerary.BuildContext, text string) (*Result, error) {
	return b.FromReader(ctx, bc, strings.NewReader(text))
}

// FromReader builds from marker text read line by line
func (b *Builder) FromReader(ctx context.Context, bc itinerary.BuildContext, r io.Reader) (*Result, error) {
	parsed, err := parser.Parse(bc, r)
	if err != nil {
		return nil, fmt.Errorf("reading itinerary: %w", err)
	}
	for _, d := range parsed.Diagnostics {
		b.logger.Debug("builder: ignored line", "line", d.Line, "section", d.Section, "reason", d.Reason)
	}
	if len(parsed.Records) == 0 {
		return nil, fmt.Errorf("%w: no itinerary content in %d diagnostics", itinerary.ErrUpstreamGeneration, len(parsed.Diagnostics))
	}
	b.logger.Info("builder: parsed itinerary",
		"records", len(parsed.Records),
		"stops", parsed.Count(parser.RecordStop),
		"ignored", len(parsed.Diagnostics),
	)

	blocks, err := b.composer.Compose(ctx, bc, parsed.Records)
	if err != nil {
		return nil, err
	}

	res, err := b.render(ctx, bc, blocks)
	if err != nil {
		return nil, err
	}
	res.Diagnostics = parsed.Diagnostics
	return res, nil
}

// FromPlan builds from a structured plan without the line parser
func (b *Builder) FromPlan(ctx context.Context, bc itinerary.BuildContext, plan *itinerary.Plan) (*Result, error) {
	if plan == nil || (strings.TrimSpace(plan.Summary.Title) == "" && len(plan.Days) == 0) {
		return nil, fmt.Errorf("%w: empty plan", itinerary.ErrUpstreamGeneration)
	}

	blocks, err := b.composer.ComposePlan(ctx, bc, plan)
	if err != nil {
		return nil, err
	}
	return b.render(ctx, bc, blocks)
}

func (b *Builder) render(ctx context.Context, bc itinerary.BuildContext, blocks []document.Block) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := b.page
	opts.Recipient = bc.Recipient
	if opts.Title == "" {
		opts.Title = documentTitle(blocks)
	}

	doc, err := render.Render(blocks, opts)
	if err != nil {
		return nil, err
	}
	b.logger.Info("builder: rendered document",
		"pages", doc.Pages,
		"bytes", len(doc.Bytes),
		"panels", document.Count(blocks, document.KindStopPanel),
	)
	return &Result{Document: doc, Blocks: blocks}, nil
}

func documentTitle(blocks []document.Block) string {
	for _, blk := range blocks {
		if blk.Kind == document.KindTitle {
			return blk.Text
		}
	}
	return ""
}
