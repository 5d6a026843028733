package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/pulsedeck/internal/logging"
	"github.com/ppiankov/pulsedeck/internal/pipeline"
)

// Synthesizer turns one request into a report bundle
type Synthesizer interface {
	Synthesize(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// ReportJob synthesizes one export
type ReportJob struct {
	Request     pipeline.Request
	Synthesizer Synthesizer
}

// Execute runs the synthesis
func (j *ReportJob) Execute(ctx context.Context) Result {
	res, err := j.Synthesizer.Synthesize(ctx, j.Request)
	return &ReportResult{
		Input:  j.Request.InputPath,
		Result: res,
		Error:  err,
	}
}

// ReportResult is the outcome of one batch entry
type ReportResult struct {
	Input  string
	Result *pipeline.Result
	Error  error
}

// GetError returns the synthesis error
func (r *ReportResult) GetError() error {
	return r.Error
}

// BatchProcessor synthesizes many exports concurrently
type BatchProcessor struct {
	synth       Synthesizer
	concurrency int
	base        pipeline.Request
	logger      logging.Logger
}

// NewBatchProcessor creates a processor. base supplies the request fields
// shared by every entry (rules, word cloud, output directory); InputPath,
// ClientName and RequestID are set per entry.
func NewBatchProcessor(synth Synthesizer, concurrency int, base pipeline.Request, logger logging.Logger) *BatchProcessor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &BatchProcessor{
		synth:       synth,
		concurrency: concurrency,
		base:        base,
		logger:      logger,
	}
}

// ProcessFiles synthesizes every input and returns results in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, inputs []string) []*ReportResult {
	if len(inputs) == 0 {
		return []*ReportResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, input := range inputs {
		req := b.base
		req.InputPath = input
		req.ClientName = ""
		req.RequestID = ""
		if !pool.Submit(&ReportJob{Request: req, Synthesizer: b.synth}) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*ReportResult, len(inputs))
	for i := range inputs {
		if i < len(results) && results[i] != nil {
			out[i] = results[i].(*ReportResult)
		} else {
			out[i] = &ReportResult{Input: inputs[i], Error: ctx.Err()}
		}
		b.log(out[i])
	}
	return out
}

// ProcessList reads inputs from a list file and processes them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*ReportResult, error) {
	inputs, err := ReadInputList(listPath)
	if err != nil {
		return nil, fmt.Errorf("read input list: %w", err)
	}
	return b.ProcessFiles(ctx, inputs), nil
}

func (b *BatchProcessor) log(r *ReportResult) {
	entry := b.logger.WithField("input", r.Input)
	switch {
	case r.Error != nil:
		entry.WithError(r.Error).Error("Batch entry failed")
	case r.Result != nil:
		entry.WithFields(logging.Fields{
			"bundle":  r.Result.BundlePath,
			"missing": len(r.Result.Missing),
		}).Info("Batch entry assembled")
	}
}

// Summary counts assembled and failed entries, and entries with at least
// one unfilled placeholder
type Summary struct {
	Assembled   int
	Failed      int
	WithMissing int
}

// Summarize tallies batch results
func Summarize(results []*ReportResult) Summary {
	var s Summary
	for _, r := range results {
		if r.Error != nil || r.Result == nil {
			s.Failed++
			continue
		}
		s.Assembled++
		if len(r.Result.Missing) > 0 {
			s.WithMissing++
		}
	}
	return s
}

// ReadInputList reads export paths from a file, one per line. Blank lines
// and # comments are skipped, duplicates dropped, and relative paths
// resolved against the list's directory.
func ReadInputList(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return inputs, nil
}
