package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pulsedeck/internal/aggregate"
	"github.com/ppiankov/pulsedeck/internal/classify"
	"github.com/ppiankov/pulsedeck/internal/ingest"
	"github.com/ppiankov/pulsedeck/internal/model"
)

var classifyOut string

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <export>",
	Short: "Tag an export with categories and themes",
	Long: `Classify cleans an export and tags every mention with Categoria and
Tematica using an ordered rule file. The first matching rule wins; with
--use-keywords a second pass matches the Keywords column of mentions the
first pass left unclassified.

The tagged export keeps the input's encoding and delimiter.

Example:
  pulsedeck classify export.csv --rules rules.yaml
  pulsedeck classify export.csv --rules rules.yaml --use-keywords --out tagged.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&rulesPath, "rules", "", "classification rules (YAML or JSON)")
	classifyCmd.Flags().BoolVar(&useKeywords, "use-keywords", false, "classify unmatched mentions by their Keywords field")
	classifyCmd.Flags().StringVarP(&classifyOut, "out", "o", "", "output path (default: <export>_clasificado.csv)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("rules") {
		cfg.Classifier.RulesPath = rulesPath
	}
	if cmd.Flags().Changed("use-keywords") {
		cfg.Classifier.UseKeywords = useKeywords
	}
	if cfg.Classifier.RulesPath == "" {
		return fmt.Errorf("no rules: pass --rules or set classifier.rules_path")
	}

	out := classifyOut
	if out == "" {
		base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
		out = base + "_clasificado.csv"
	}

	counts, err := classifyExport(cfg, args[0], out)
	if err != nil {
		return err
	}

	printClassification(cmd.OutOrStdout(), counts)
	fmt.Fprintf(os.Stderr, "✓ Tagged export written: %s\n", out)
	return nil
}

// classifyExport tags the export at in and writes it to out
func classifyExport(cfg *model.Config, in, out string) (*model.Classification, error) {
	rules, err := classify.LoadRules(cfg.Classifier.RulesPath)
	if err != nil {
		return nil, err
	}
	opts, err := ingest.OptionsFrom(cfg.Input.Encoding, cfg.Input.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("input options: %w", err)
	}

	table, err := ingest.ReadFile(in, opts)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	ds, err := ingest.Clean(table)
	if err != nil {
		return nil, err
	}

	stats := classify.Classify(ds.Records, rules, classify.Options{
		Default:     cfg.Classifier.Default,
		UseKeywords: cfg.Classifier.UseKeywords,
	})
	ds.EnsureColumn(model.ColumnCategoria)
	ds.EnsureColumn(model.ColumnTematica)
	logger.WithField("pass1", stats.Pass1).
		WithField("pass2", stats.Pass2).
		WithField("unclassified", stats.Unclassified).
		Info("Mentions classified")

	if err := ingest.WriteFile(out, ds, opts); err != nil {
		return nil, err
	}
	return aggregate.CategoryBreakdown(ds.Records, classify.Categories(rules), cfg.Classifier.Default), nil
}

func printClassification(w io.Writer, c *model.Classification) {
	fmt.Fprintf(w, "%-24s %-24s %9s\n", "Categoria", "Tematica", "Menciones")
	for _, row := range c.Counts {
		fmt.Fprintf(w, "%-24s %-24s %9d\n", row.Categoria, row.Tematica, row.Mentions)
	}
}
