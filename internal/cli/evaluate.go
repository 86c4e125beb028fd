package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/letterscan/internal/export"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
)

func newEvaluateCommand(g *globalFlags) *cobra.Command {
	var (
		truthPath   string
		xlsxPath    string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "evaluate <file|dir>...",
		Short: "Score processed letters against ground truth",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.config(cmd)
			if truthPath != "" {
				cfg.GroundTruth.Path = truthPath
				cfg.GroundTruth.DSN = ""
			}
			if cfg.GroundTruth.Path == "" && cfg.GroundTruth.DSN == "" {
				return fmt.Errorf("evaluate needs --truth or GROUND_TRUTH_PATH/GROUND_TRUTH_DSN")
			}

			a, logger, err := g.build(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			results, runErr := runSources(cmd.Context(), a.Files, args, concurrency, true, logger)
			out := cmd.OutOrStdout()
			renderAccuracy(out, results)
			renderSummary(out, pipeline.Summarize(results))

			if xlsxPath != "" {
				data, err := export.ResultsXLSX(results, logger)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", xlsxPath, err)
				}
				fmt.Fprintf(out, "wrote %s\n", xlsxPath)
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&truthPath, "truth", "", "ground-truth JSON file or directory")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX report to this path")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 2, "sources processed in parallel")
	return cmd
}

func renderAccuracy(w io.Writer, results []pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Doc", "Type", "CER", "WER", "Fields %"})
	for _, r := range results {
		if r.Accuracy == nil {
			t.AppendRow(table.Row{r.Source, r.Index, r.Type, "-", "-", "-"})
			continue
		}
		t.AppendRow(table.Row{
			r.Source, r.Index, r.Type,
			formatFloat(r.Accuracy.CharacterErrorRate),
			formatFloat(r.Accuracy.WordErrorRate),
			formatFloat(r.Accuracy.OverallFieldAccuracy),
		})
	}
	t.Render()
}

func renderSummary(w io.Writer, s pipeline.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRow(table.Row{"Sources", s.Sources})
	t.AppendRow(table.Row{"Documents", s.Documents})
	t.AppendRow(table.Row{"Scored", s.Scored})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Mean CER", formatFloat(s.MeanCER)})
	t.AppendRow(table.Row{"Mean WER", formatFloat(s.MeanWER)})
	t.AppendRow(table.Row{"Mean field accuracy %", formatFloat(s.MeanFieldAccuracy)})

	if len(s.FieldAccuracy) > 0 {
		t.AppendSeparator()
		names := make([]string, 0, len(s.FieldAccuracy))
		for name := range s.FieldAccuracy {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t.AppendRow(table.Row{name + " %", formatFloat(s.FieldAccuracy[name])})
		}
	}
	t.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
