// Package export writes evaluation results as XLSX workbooks.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/letterscan/internal/pipeline"
)

const (
	SheetDocuments = "Documents"
	SheetAccuracy  = "Accuracy"
	SheetSummary   = "Summary"
)

// maxCellRunes keeps long field values (letter bodies) readable.
const maxCellRunes = 300

// ResultsXLSX returns a workbook with one row per logical document on
// "Documents" (extracted field values), one row per scored document on
// "Accuracy" (error rates and per-field status) and the batch summary.
func ResultsXLSX(results []pipeline.Result, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetDocuments); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetAccuracy, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	idx, err := f.GetSheetIndex(SheetDocuments)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	fieldNames := extractedFieldNames(results)
	if err := writeDocuments(f, results, fieldNames); err != nil {
		return nil, err
	}
	scored, err := writeAccuracy(f, results)
	if err != nil {
		return nil, err
	}
	if err := writeSummary(f, pipeline.Summarize(results)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"documents", len(results),
		"scored", scored,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeDocuments(f *excelize.File, results []pipeline.Result, fieldNames []string) error {
	header := []any{"Source", "Document", "Pages", "Letter Type", "Institution Format"}
	for _, n := range fieldNames {
		header = append(header, n)
	}
	if err := writeRow(f, SheetDocuments, 1, header...); err != nil {
		return err
	}

	for i, r := range results {
		values := []any{r.Source, r.Index + 1, joinInts(r.Pages), r.Label, r.MatchesFormat}
		for _, n := range fieldNames {
			values = append(values, truncate(r.Fields[n].Text, maxCellRunes))
		}
		if err := writeRow(f, SheetDocuments, i+2, values...); err != nil {
			return err
		}
	}

	widths := []colWidth{{"A", "A", 32}, {"D", "D", 20}} // source, type
	if len(fieldNames) > 0 {
		last, err := excelize.ColumnNumberToName(5 + len(fieldNames))
		if err != nil {
			return err
		}
		widths = append(widths, colWidth{"F", last, 28})
	}
	if err := setColWidths(f, SheetDocuments, widths...); err != nil {
		return err
	}
	return f.SetPanes(SheetDocuments, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeAccuracy(f *excelize.File, results []pipeline.Result) (int, error) {
	var gtFields []string
	seen := map[string]struct{}{}
	for _, r := range results {
		if r.Accuracy == nil {
			continue
		}
		for _, n := range r.Accuracy.FieldNames() {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				gtFields = append(gtFields, n)
			}
		}
	}
	sort.Strings(gtFields)

	header := []any{"Source", "Document", "CER", "WER", "Field Accuracy (%)"}
	for _, n := range gtFields {
		header = append(header, n)
	}
	if err := writeRow(f, SheetAccuracy, 1, header...); err != nil {
		return 0, err
	}

	row := 2
	for _, r := range results {
		if r.Accuracy == nil {
			continue
		}
		a := r.Accuracy
		values := []any{r.Source, r.Index + 1, round4(a.CharacterErrorRate), round4(a.WordErrorRate), round4(a.OverallFieldAccuracy)}
		for _, n := range gtFields {
			if fr, ok := a.PerField[n]; ok {
				values = append(values, string(fr.Status))
			} else {
				values = append(values, "")
			}
		}
		if err := writeRow(f, SheetAccuracy, row, values...); err != nil {
			return 0, err
		}
		row++
	}
	if err := setColWidths(f, SheetAccuracy, colWidth{"A", "A", 32}); err != nil {
		return 0, err
	}
	return row - 2, nil
}

func writeSummary(f *excelize.File, s pipeline.Summary) error {
	rows := [][]any{
		{"Sources", s.Sources},
		{"Documents", s.Documents},
		{"Scored", s.Scored},
		{"Mean CER", round4(s.MeanCER)},
		{"Mean WER", round4(s.MeanWER)},
		{"Mean Field Accuracy (%)", round4(s.MeanFieldAccuracy)},
	}
	names := make([]string, 0, len(s.FieldAccuracy))
	for n := range s.FieldAccuracy {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		rows = append(rows, []any{"Accuracy: " + n, round4(s.FieldAccuracy[n])})
	}
	for i, r := range rows {
		if err := writeRow(f, SheetSummary, i+1, r...); err != nil {
			return err
		}
	}
	return setColWidths(f, SheetSummary, colWidth{"A", "A", 36})
}

type colWidth struct {
	from, to string
	width    float64
}

func setColWidths(f *excelize.File, sheet string, widths ...colWidth) error {
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("xlsx %s column width %s:%s: %w", sheet, w.from, w.to, err)
		}
	}
	return nil
}

func extractedFieldNames(results []pipeline.Result) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, r := range results {
		for n := range r.Fields {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func round4(v float64) float64 {
	out, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
