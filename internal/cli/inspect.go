package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pulsedeck/internal/pipeline"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <template>",
	Short: "List the placeholders a template carries",
	Long: `Inspect indexes a PowerPoint template the way report does and shows
which placeholder tokens resolve, where, and which are absent.

Example:
  pulsedeck inspect powerpoints/Reporte_plantilla.pptx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := pipeline.InspectTemplate(args[0])
		if err != nil {
			return err
		}
		printInspection(cmd.OutOrStdout(), rep)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func printInspection(w io.Writer, rep *pipeline.TemplateReport) {
	fmt.Fprintf(w, "Template: %s (%d slides, %d text shapes)\n\n", rep.Path, rep.Slides, rep.Shapes)
	for _, pl := range rep.Found {
		fmt.Fprintf(w, "  ✓ %-36s slide %-3d %-8s %s\n", pl.Token, pl.Slide, pl.Kind, pl.Shape)
	}
	for _, tok := range rep.Missing {
		fmt.Fprintf(w, "  ✗ %s\n", tok)
	}
	if len(rep.Duplicates) > 0 {
		fmt.Fprintf(w, "\nRepeated texts (last shape wins):\n")
		for _, d := range rep.Duplicates {
			fmt.Fprintf(w, "  - %s\n", d)
		}
	}
}
