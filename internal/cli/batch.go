package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pulsedeck/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Build reports for many exports in parallel",
	Long: `Batch reads export paths from a file (one per line, # for comments)
and builds one bundle per export on a worker pool. Relative paths are
resolved against the list's directory.

The narrative cache, rate limiter and circuit breaker are shared by all
workers.

Example:
  pulsedeck batch exports.txt
  pulsedeck batch exports.txt --concurrency 8 -o ./reports
  pulsedeck batch exports.txt --rules rules.yaml --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	addSynthesisFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySynthesisFlags(cmd, cfg)
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	base, err := baseRequest(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Pulsedeck Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Template:     %s\n", cfg.Template.Path)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	p, metrics := newPipeline(cfg)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, base, logger)

	fmt.Fprintf(os.Stderr, "⚙️  Processing exports with %d workers...\n\n", cfg.Concurrency.Workers)
	results, err := processor.ProcessList(ctx, file)
	writeMetrics(metrics, cfg.Metrics.TextfilePath)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	for _, r := range results {
		name := filepath.Base(r.Input)
		switch {
		case r.Error != nil:
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", name, r.Error)
		case len(r.Result.Missing) > 0:
			fmt.Fprintf(os.Stderr, "⚠️  %s → %s (not filled: %s)\n", name, r.Result.BundlePath, strings.Join(r.Result.Missing, ", "))
		default:
			fmt.Fprintf(os.Stderr, "✓ %s → %s\n", name, r.Result.BundlePath)
		}
	}

	summary := worker.Summarize(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:          %d exports\n", len(results))
	fmt.Fprintf(os.Stderr, "  Assembled:      %d\n", summary.Assembled)
	fmt.Fprintf(os.Stderr, "  With missing:   %d\n", summary.WithMissing)
	fmt.Fprintf(os.Stderr, "  Failures:       %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Output:         %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d exports failed", summary.Failed, len(results))
	}
	return nil
}
