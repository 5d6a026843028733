package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pulsedeck/internal/classify"
	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/pipeline"
)

// Flags shared by report and batch
var (
	templatePath  string
	outputDir     string
	rulesPath     string
	wordcloudPath string
	metricsFile   string
	byDate        bool
	useKeywords   bool
)

func addSynthesisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "PowerPoint template (overrides template.path)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory for bundles (overrides output.dir)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "classification rules (YAML or JSON); enables CATEGORY_TABLE")
	cmd.Flags().StringVar(&wordcloudPath, "wordcloud", "", "image for the WORDCLOUD placeholder")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&byDate, "by-date", false, "group the evolution chart by date instead of date and hour")
	cmd.Flags().BoolVar(&useKeywords, "use-keywords", false, "classify unmatched mentions by their Keywords field")
}

// applySynthesisFlags copies explicitly set flags over the loaded config
func applySynthesisFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("template") {
		cfg.Template.Path = templatePath
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("rules") {
		cfg.Classifier.RulesPath = rulesPath
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.TextfilePath = metricsFile
	}
	if flags.Changed("by-date") {
		cfg.Evolution.ByDate = byDate
	}
	if flags.Changed("use-keywords") {
		cfg.Classifier.UseKeywords = useKeywords
	}
}

// baseRequest loads the rule set and word cloud shared by every export
func baseRequest(cfg *model.Config) (pipeline.Request, error) {
	req := pipeline.Request{OutputDir: cfg.Output.Dir}

	if cfg.Classifier.RulesPath != "" {
		rules, err := classify.LoadRules(cfg.Classifier.RulesPath)
		if err != nil {
			return req, err
		}
		req.Rules = rules
	}

	if wordcloudPath != "" {
		data, err := os.ReadFile(wordcloudPath)
		if err != nil {
			return req, fmt.Errorf("read word cloud: %w", err)
		}
		req.Wordcloud = data
	}
	return req, nil
}
