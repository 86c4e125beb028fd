package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/extract"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
	"github.com/joseph-ayodele/letterscan/internal/score"
)

func TestResultsXLSX(t *testing.T) {
	results := []pipeline.Result{
		{
			Index:         0,
			Source:        "scan.pdf",
			Pages:         []int{1, 2},
			MatchesFormat: true,
			Type:          constants.SuratTugas,
			Label:         "Surat Tugas",
			Fields:        extract.Fields{constants.FieldNomorSurat: {Text: "5/UN1/X/2024"}},
			Accuracy: &score.Report{
				CharacterErrorRate:   0.125,
				OverallFieldAccuracy: 100,
				PerField: map[string]score.FieldResult{
					constants.FieldNomorSurat: {Correct: true, Status: constants.FieldCorrect},
				},
			},
		},
		{
			Index:  1,
			Source: "scan.pdf",
			Pages:  []int{3},
			Type:   constants.Unknown,
			Label:  "Tidak Diketahui",
			Fields: extract.Fields{},
		},
	}

	data, err := ResultsXLSX(results, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{SheetDocuments, SheetAccuracy, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetDocuments)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Source", "Document", "Pages", "Letter Type", "Institution Format", constants.FieldNomorSurat}, rows[0])
	require.Equal(t, []string{"scan.pdf", "1", "1,2", "Surat Tugas", "TRUE", "5/UN1/X/2024"}, rows[1])
	require.Equal(t, []string{"scan.pdf", "2", "3", "Tidak Diketahui", "FALSE"}, rows[2])

	rows, err = f.GetRows(SheetAccuracy)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"scan.pdf", "1", "0.125", "0", "100", "Correct"}, rows[1])

	rows, err = f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Equal(t, []string{"Documents", "2"}, rows[1])
	require.Equal(t, []string{"Scored", "1"}, rows[2])
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 3))
	require.Equal(t, "ab…", truncate("abcd", 3))
	require.Equal(t, "Ü…", truncate("ÜÜÜ", 2))
}

func TestSetColWidths(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, setColWidths(f, "Sheet1", colWidth{"A", "B", 24}))
	w, err := f.GetColWidth("Sheet1", "B")
	require.NoError(t, err)
	require.Equal(t, 24.0, w)

	tests := []struct {
		name  string
		sheet string
		width colWidth
	}{
		{"missing sheet", "Nope", colWidth{"A", "A", 10}},
		{"bad column", "Sheet1", colWidth{"A", "1", 10}},
		{"width too large", "Sheet1", colWidth{"A", "A", 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, setColWidths(f, tt.sheet, tt.width))
		})
	}
}
