package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	clientName    string
	reportTimeout time.Duration
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <export>",
	Short: "Build a report bundle from one monitoring export",
	Long: `Report cleans a monitoring export, aggregates its metrics and fills the
template, writing <client>_<id>.zip with the deck and the cleaned export.

Placeholders missing from the template are listed as a warning; the
bundle is still written.

Example:
  pulsedeck report "Acme export.csv"
  pulsedeck report export.csv --client "Acme Corp" --template plantilla.pptx
  pulsedeck report export.csv --rules rules.yaml --wordcloud cloud.png -o ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&clientName, "client", "", "client name (default: first word of the export file name)")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 5*time.Minute, "overall report timeout")
	addSynthesisFlags(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySynthesisFlags(cmd, cfg)

	req, err := baseRequest(cfg)
	if err != nil {
		return err
	}
	req.InputPath = args[0]
	req.ClientName = clientName

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Export:   %s\n", req.InputPath)
		fmt.Fprintf(os.Stderr, "Template: %s\n", cfg.Template.Path)
		if req.Rules != nil {
			fmt.Fprintf(os.Stderr, "Rules:    %s (%d categories)\n", cfg.Classifier.RulesPath, len(req.Rules))
		}
		fmt.Fprintln(os.Stderr)
	}

	p, metrics := newPipeline(cfg)
	res, err := p.Synthesize(ctx, req)
	writeMetrics(metrics, cfg.Metrics.TextfilePath)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	rc := res.Context
	fmt.Fprintf(os.Stderr, "✓ %s: %d mentions, %d authors, reach %s\n",
		rc.Meta.ClientName, rc.KPIs.TotalMentions, rc.KPIs.UniqueAuthors, rc.KPIs.EstimatedReachFmt)
	if res.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  %d rows with unparsable date/time left out of the evolution chart\n", res.Skipped)
	}
	if len(res.Duplicates) > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  Template repeats: %s (last shape filled)\n", strings.Join(res.Duplicates, ", "))
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  Placeholders not filled: %s\n", strings.Join(res.Missing, ", "))
	}

	fmt.Println(res.BundlePath)
	return nil
}
