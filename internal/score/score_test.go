package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/extract"
	"github.com/joseph-ayodele/letterscan/internal/groundtruth"
)

func TestCharacterErrorRate(t *testing.T) {
	tests := []struct {
		name     string
		ref, hyp string
		want     float64
	}{
		{"identical", "Surat Tugas", "Surat Tugas", 0},
		{"both empty", "", "", 0},
		{"empty prediction", "abc", "", 1},
		{"empty reference", "", "abc", 1},
		{"one substitution", "abcd", "abxd", 0.25},
		{"code points", "éé", "ée", 0.5},
		{"longer prediction is not clamped", "ab", "abcdef", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CharacterErrorRate(tt.ref, tt.hyp), 1e-9)
		})
	}
}

func TestWordErrorRate(t *testing.T) {
	tests := []struct {
		name     string
		ref, hyp string
		want     float64
	}{
		{"identical", "surat tugas nomor", "surat  tugas\nnomor", 0},
		{"both blank", " ", "\n", 0},
		{"empty prediction", "a b", "", 1},
		{"empty reference", "", "a", 1},
		{"one word wrong", "surat tugas nomor lima", "surat tugas nomer lima", 0.25},
		{"deleted word", "a b c d", "a c d", 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WordErrorRate(tt.ref, tt.hyp), 1e-9)
		})
	}
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 3, editDistance([]string{"kitten"}, []string{"a", "b", "c"}))
	assert.Equal(t, 3, editDistance([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0, editDistance[int](nil, nil))
}

func TestScoreMissingFieldIsNotExtracted(t *testing.T) {
	gt := groundtruth.Record{FullText: "x", Fields: map[string]string{"nomor": "123/X/2024"}}
	r := Score("x", extract.Fields{}, gt)

	require.Equal(t, 0.0, r.OverallFieldAccuracy)
	require.Equal(t, constants.FieldNotExtracted, r.PerField["nomor"].Status)
	require.False(t, r.PerField["nomor"].Correct)
	require.Equal(t, "123/X/2024", r.PerField["nomor"].Expected)
}

func TestScoreFieldStatuses(t *testing.T) {
	gt := groundtruth.Record{
		FullText: "Surat Tugas",
		Fields: map[string]string{
			"nomor_surat":   "5/UN1/X/2024",
			"perihal":       "Undangan Rapat",
			"tanggal_surat": "12 Maret 2024",
			"ttd_surat":     "Dekan",
		},
	}
	pred := extract.Fields{
		"nomor_surat":   {Text: " 5/un1/x/2024 "},
		"perihal":       {Text: "Undangan Rapar"},
		"tanggal_surat": {Text: "  "},
		"penerima":      {Text: "ignored, not in ground truth"},
	}

	r := Score("Surat Tugas", pred, gt)
	require.Equal(t, []string{"nomor_surat", "perihal", "tanggal_surat", "ttd_surat"}, r.FieldNames())

	assert.Equal(t, constants.FieldCorrect, r.PerField["nomor_surat"].Status)
	assert.True(t, r.PerField["nomor_surat"].Correct)
	assert.Equal(t, 1.0, r.PerField["nomor_surat"].Similarity)

	assert.Equal(t, constants.FieldIncorrect, r.PerField["perihal"].Status)
	assert.InDelta(t, 1-1.0/14, r.PerField["perihal"].Similarity, 1e-9)

	assert.Equal(t, constants.FieldEmpty, r.PerField["tanggal_surat"].Status)
	assert.Equal(t, constants.FieldNotExtracted, r.PerField["ttd_surat"].Status)

	assert.InDelta(t, 25.0, r.OverallFieldAccuracy, 1e-9)
	assert.Equal(t, 0.0, r.CharacterErrorRate)
	assert.Equal(t, 0.0, r.WordErrorRate)
}

func TestScoreNoGroundTruthFields(t *testing.T) {
	r := Score("abc", extract.Fields{"a": {Text: "b"}}, groundtruth.Record{FullText: "abc"})
	require.Equal(t, 0.0, r.OverallFieldAccuracy)
	require.Empty(t, r.PerField)
	require.NotNil(t, r.PerField)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 0.5, Similarity("abcd", "abxy"), 1e-9)
}
