// Package pipeline turns one monitoring export into a report bundle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/pulsedeck/internal/aggregate"
	"github.com/ppiankov/pulsedeck/internal/classify"
	"github.com/ppiankov/pulsedeck/internal/ingest"
	"github.com/ppiankov/pulsedeck/internal/inject"
	"github.com/ppiankov/pulsedeck/internal/logging"
	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/narrative"
	"github.com/ppiankov/pulsedeck/internal/pptx"
	"github.com/ppiankov/pulsedeck/internal/telemetry"
)

// State is the lifecycle stage of one synthesis
type State string

const (
	StateCreated    State = "created"
	StateCleaned    State = "cleaned"
	StateAggregated State = "aggregated"
	StateIndexed    State = "indexed"
	StateInjecting  State = "injecting"
	StateAssembled  State = "assembled"
	StateFailed     State = "failed"
)

// Pipeline orchestrates report synthesis. It holds no per-request state
// and may run several syntheses at once.
type Pipeline struct {
	config   *model.Config
	narrator *narrative.Narrator // Optional; nil renders the fallback text
	metrics  *telemetry.Metrics  // Optional
	logger   logging.Logger
	now      func() time.Time
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithNarrator sets the conversation analysis service
func WithNarrator(n *narrative.Narrator) Option {
	return func(p *Pipeline) { p.narrator = n }
}

// WithMetrics records every synthesis on m
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the structured logger
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides time.Now, for reproducible report dates
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: cfg,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request describes one synthesis
type Request struct {
	InputPath  string
	ClientName string // Defaults to the first word of the export's file name
	RequestID  string // Generated when empty

	// Rules enable classification and the category table; nil skips both
	Rules []classify.Rule

	// Wordcloud is an optional image for the WORDCLOUD placeholder
	Wordcloud []byte

	OutputDir string // Defaults to the configured output directory
}

// Result reports what a synthesis produced
type Result struct {
	BundlePath string
	Missing    []string // Tokens that could not be filled, in plan order
	Duplicates []string // Template texts carried by more than one shape
	TemplateID string
	RequestID  string
	State      State

	Context    *model.ReportContext
	Classified classify.Stats
	Skipped    int // Rows whose timestamp could not be parsed
}

// Synthesize runs the whole pipeline for one export. Schema and template
// problems fail the request; unfilled placeholders are reported in
// Result.Missing.
func (p *Pipeline) Synthesize(ctx context.Context, req Request) (*Result, error) {
	start := time.Now() // wall time; p.now only dates the report
	res := &Result{
		RequestID:  req.RequestID,
		TemplateID: p.templateID(),
		State:      StateCreated,
	}
	if res.RequestID == "" {
		res.RequestID = NewRequestID()
	}
	clientName := req.ClientName
	if clientName == "" {
		clientName = ClientNameFromPath(req.InputPath)
	}

	log := p.logger.WithFields(logging.Fields{
		"request_id": res.RequestID,
		"input":      req.InputPath,
		"template":   res.TemplateID,
	})

	err := p.run(ctx, req, clientName, res, log)
	status := res.State
	if err != nil {
		res.State = StateFailed
		status = StateFailed
		log.WithError(err).Error("Report synthesis failed")
	}
	p.metrics.ObserveReport(string(status), time.Since(start), res.Missing)
	return res, err
}

func (p *Pipeline) run(ctx context.Context, req Request, clientName string, res *Result, log logging.Entry) error {
	// 1. Read and clean
	readOpts, err := ingest.OptionsFrom(p.config.Input.Encoding, p.config.Input.Delimiter)
	if err != nil {
		return fmt.Errorf("input options: %w", err)
	}
	table, err := ingest.ReadFile(req.InputPath, readOpts)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	ds, err := ingest.Clean(table)
	if err != nil {
		return err
	}
	res.State = StateCleaned
	log.WithField("rows", len(ds.Records)).Debug("Export cleaned")

	// 2. Classify
	var categories []string
	if req.Rules != nil {
		res.Classified = classify.Classify(ds.Records, req.Rules, classify.Options{
			Default:     p.config.Classifier.Default,
			UseKeywords: p.config.Classifier.UseKeywords,
		})
		ds.EnsureColumn(model.ColumnCategoria)
		ds.EnsureColumn(model.ColumnTematica)
		categories = classify.Categories(req.Rules)
		log.WithFields(logging.Fields{
			"pass1":        res.Classified.Pass1,
			"pass2":        res.Classified.Pass2,
			"unclassified": res.Classified.Unclassified,
		}).Debug("Mentions classified")
	}

	// 3. Aggregate
	rc, stats := aggregate.Build(ds, p.aggregateOptions(clientName, res, categories))
	res.Context = rc
	res.Skipped = stats.SkippedTimestamps
	res.State = StateAggregated
	if stats.SkippedTimestamps > 0 {
		log.WithField("skipped", stats.SkippedTimestamps).Warn("Rows with unparsable timestamps left out of the evolution chart")
	}

	// 4. Open the template and index it once
	pres, err := p.openTemplate()
	if err != nil {
		return err
	}
	ix := inject.BuildIndex(pres)
	res.Duplicates = ix.Duplicates()
	res.State = StateIndexed
	if len(res.Duplicates) > 0 {
		log.WithField("tokens", res.Duplicates).Warn("Template repeats placeholder texts; the last shape wins")
	}

	// 5. Inject
	res.State = StateInjecting
	for _, o := range p.inject(ctx, ix, rc, ds, req) {
		if o.OK() {
			continue
		}
		res.Missing = append(res.Missing, o.Token)
		entry := log.WithFields(logging.Fields{"token": o.Token, "kind": o.Kind})
		if o.Missing() {
			entry.Warn("Placeholder not found in template")
		} else {
			entry.WithError(o.Err).Warn("Placeholder could not be filled")
		}
	}

	// 6. Bundle
	outDir := req.OutputDir
	if outDir == "" {
		outDir = p.config.Output.Dir
	}
	bundle, err := writeBundle(outDir, clientName, res.RequestID, req.InputPath, pres, ds, readOpts)
	if err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	res.BundlePath = bundle
	res.State = StateAssembled
	log.WithFields(logging.Fields{
		"bundle":  bundle,
		"missing": len(res.Missing),
	}).Info("Report assembled")
	return nil
}

func (p *Pipeline) aggregateOptions(clientName string, res *Result, categories []string) aggregate.Options {
	g := aggregate.ByHour
	if p.config.Evolution.ByDate {
		g = aggregate.ByDate
	}
	layouts := aggregate.DefaultLayouts()
	if p.config.Input.DateLayout != "" {
		layouts.Date = p.config.Input.DateLayout
	}
	if p.config.Input.TimeLayout != "" {
		layouts.Time = p.config.Input.TimeLayout
	}
	palette := p.config.Style.SentimentColors
	if len(palette) == 0 {
		palette = aggregate.DefaultPalette()
	}

	return aggregate.Options{
		ClientName:  clientName,
		RequestID:   res.RequestID,
		TemplateID:  res.TemplateID,
		Now:         p.now(),
		DateLayout:  p.config.Style.ReportDateLayout,
		Granularity: g,
		Layouts:     layouts,
		Palette:     palette,
		Categories:  categories,
		Default:     p.config.Classifier.Default,
	}
}

// openTemplate opens the configured deck, mapping failures to *model.TemplateError
func (p *Pipeline) openTemplate() (*pptx.Presentation, error) {
	path := p.config.Template.Path
	pres, err := pptx.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &model.TemplateError{Path: path, Err: model.ErrTemplateNotFound}
	}
	if err != nil {
		return nil, &model.TemplateError{Path: path, Err: err}
	}
	return pres, nil
}

func (p *Pipeline) templateID() string {
	if p.config.Template.ID != "" {
		return p.config.Template.ID
	}
	base := filepath.Base(p.config.Template.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
