// Package compose turns parsed records or a structured plan into the ordered
// block list the renderer lays out.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gubarz/tripdoc/internal/document"
	"github.com/gubarz/tripdoc/internal/imagery"
	"github.com/gubarz/tripdoc/internal/itinerary"
	"github.com/gubarz/tripdoc/internal/parser"
)

// Options tunes image resolution
type Options struct {
	Concurrency int           // parallel image lookups
	Timeout     time.Duration // per stop
	Normalize   imagery.NormalizeOptions
}

// DefaultOptions returns the settings used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		Timeout:     15 * time.Second,
		Normalize:   imagery.DefaultNormalizeOptions(),
	}
}

// Composer builds block lists, resolving one image per stop
type Composer struct {
	resolver imagery.Resolver
	opts     Options
	logger   *slog.Logger
}

// New creates a composer. A nil resolver means no images.
func New(resolver imagery.Resolver, opts Options) *Composer {
	if resolver == nil {
		resolver = imagery.None
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Composer{
		resolver: resolver,
		opts:     opts,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger used for degraded panels
func (c *Composer) WithLogger(l *slog.Logger) *Composer {
	c.logger = l
	return c
}

// Table headings
const (
	ColumnDay     = "Day"
	ColumnSummary = "Summary"
	ColumnTheme   = "Theme"
)

// Query builds the image search query for a stop. The destination makes
// searches for generic place names land in the right city.
func Query(destination, place string) string {
	return strings.Join(strings.Fields(destination+" "+place), " ")
}

// Compose converts parser records into blocks, keeping day and stop order
func (c *Composer) Compose(ctx context.Context, bc itinerary.BuildContext, records []parser.Record) ([]document.Block, error) {
	var queries []string
	for _, rec := range records {
		if rec.Kind == parser.RecordStop {
			queries = append(queries, Query(bc.Destination, rec.Stop.PlaceName))
		}
	}

	images, err := c.resolveAll(ctx, queries)
	if err != nil {
		return nil, err
	}

	blocks := make([]document.Block, 0, len(records)+4)
	next := 0
	for _, rec := range records {
		switch rec.Kind {
		case parser.RecordTitle:
			blocks = append(blocks, document.Title(rec.Text))
		case parser.RecordSectionHeader:
			blocks = append(blocks, document.SectionHeader(rec.Text))
		case parser.RecordParagraph:
			blocks = append(blocks, document.Paragraph(rec.Text))
		case parser.RecordTimeline:
			blocks = append(blocks, document.TimelineTable(ColumnDay, ColumnSummary, rec.Rows))
		case parser.RecordDay:
			blocks = append(blocks, document.DayHeading(rec.Text), document.Rule())
		case parser.RecordStop:
			blocks = append(blocks, document.Panel(*rec.Stop, images[next]))
			next++
		case parser.RecordPageBreak:
			blocks = append(blocks, document.PageBreak())
		}
	}

	return blocks, nil
}

// ComposePlan lays out a structured plan without going through the parser
func (c *Composer) ComposePlan(ctx context.Context, bc itinerary.BuildContext, plan *itinerary.Plan) ([]document.Block, error) {
	var queries []string
	for _, day := range plan.Days {
		for _, stop := range day.Stops {
			q := strings.TrimSpace(stop.SearchQuery)
			if q == "" {
				q = Query(bc.Destination, stop.Title)
			}
			queries = append(queries, q)
		}
	}

	images, err := c.resolveAll(ctx, queries)
	if err != nil {
		return nil, err
	}

	var blocks []document.Block
	if title := strings.TrimSpace(plan.Summary.Title); title != "" {
		blocks = append(blocks, document.Title(title))
	}
	if overview := strings.TrimSpace(plan.Summary.Overview); overview != "" {
		blocks = append(blocks, document.Paragraph(overview))
	}
	if facts := planFacts(bc, plan); len(facts) > 0 {
		blocks = append(blocks, document.FactsTable(facts))
	}
	if len(plan.Overview) > 0 {
		rows := make([]itinerary.TimelineRow, 0, len(plan.Overview))
		for _, theme := range plan.Overview {
			rows = append(rows, itinerary.TimelineRow{
				DayLabel: fmt.Sprintf("Day %d", theme.Day),
				Summary:  theme.Theme,
			})
		}
		blocks = append(blocks,
			document.SectionHeader(parser.HeadingTimeline),
			document.TimelineTable(ColumnDay, ColumnTheme, rows),
		)
	}

	next := 0
	for _, day := range plan.Days {
		if len(blocks) > 0 {
			blocks = append(blocks, document.PageBreak())
		}
		blocks = append(blocks, document.DayHeading(fmt.Sprintf("Day %d", day.Day)), document.Rule())
		for _, stop := range day.Stops {
			blocks = append(blocks, document.Panel(stop.Record(), images[next]))
			next++
		}
	}

	return blocks, nil
}

func planFacts(bc itinerary.BuildContext, plan *itinerary.Plan) [][2]string {
	var rows [][2]string
	for _, f := range plan.Facts {
		rows = append(rows, [2]string{f.Label, f.Value})
	}
	if len(rows) > 0 {
		return rows
	}
	if bc.Destination != "" {
		rows = append(rows, [2]string{"Destination", bc.Destination})
	}
	if n := len(plan.Days); n > 0 {
		rows = append(rows, [2]string{"Duration", fmt.Sprintf("%d Days", n)})
	}
	return rows
}

// resolveAll runs one lookup per query on a bounded pool. Results are stored by
// index so panel order never depends on completion order. Lookup failures
// leave a nil slot; only cancellation of ctx is an error.
func (c *Composer) resolveAll(ctx context.Context, queries []string) ([]*document.Image, error) {
	images := make([]*document.Image, len(queries))
	if len(queries) == 0 {
		return images, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			images[i] = c.resolveOne(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

type lookup struct {
	data []byte
	ok   bool
}

// resolveOne enforces the per-stop timeout even when the resolver ignores its
// context
func (c *Composer) resolveOne(ctx context.Context, query string) *document.Image {
	fctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	done := make(chan lookup, 1)
	go func() {
		data, ok := c.resolver.Resolve(fctx, query)
		done <- lookup{data: data, ok: ok}
	}()

	var res lookup
	select {
	case res = <-done:
	case <-fctx.Done():
		c.logger.Warn("compose: image lookup timed out", "query", query, "timeout", c.opts.Timeout)
		return nil
	}

	if !res.ok || len(res.data) == 0 {
		c.logger.Info("compose: stop rendered without image", "query", query)
		return nil
	}

	img, err := imagery.Normalize(res.data, c.opts.Normalize)
	if err != nil {
		c.logger.Warn("compose: discarding image", "query", query, "error", err)
		return nil
	}
	return img
}
