// Package score compares extraction output with ground truth.
package score

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/extract"
	"github.com/joseph-ayodele/letterscan/internal/groundtruth"
)

type Report struct {
	CharacterErrorRate   float64                `json:"character_error_rate"`
	WordErrorRate        float64                `json:"word_error_rate"`
	OverallFieldAccuracy float64                `json:"overall_field_accuracy"`
	PerField             map[string]FieldResult `json:"per_field"`
}

type FieldResult struct {
	Correct    bool                  `json:"correct"`
	Predicted  string                `json:"predicted"`
	Expected   string                `json:"expected"`
	Status     constants.FieldStatus `json:"status"`
	Similarity float64               `json:"similarity"`
}

// FieldNames returns the scored field names in sorted order.
func (r Report) FieldNames() []string {
	names := make([]string, 0, len(r.PerField))
	for k := range r.PerField {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Score builds the accuracy report for one logical document. Fields are
// driven by the ground truth: a field the extractor missed is "Not
// Extracted", never skipped.
func Score(predictedText string, predicted extract.Fields, gt groundtruth.Record) Report {
	r := Report{
		CharacterErrorRate: CharacterErrorRate(gt.FullText, predictedText),
		WordErrorRate:      WordErrorRate(gt.FullText, predictedText),
		PerField:           make(map[string]FieldResult, len(gt.Fields)),
	}

	names := make([]string, 0, len(gt.Fields))
	for name := range gt.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	correct := 0
	for _, name := range names {
		res := scoreField(predicted, name, gt.Fields[name])
		if res.Correct {
			correct++
		}
		r.PerField[name] = res
	}

	if len(names) > 0 {
		r.OverallFieldAccuracy = float64(correct) / float64(len(names)) * 100
	}
	return r
}

func scoreField(predicted extract.Fields, name, expected string) FieldResult {
	m, ok := predicted[name]
	switch {
	case !ok:
		return FieldResult{Expected: expected, Status: constants.FieldNotExtracted}
	case strings.TrimSpace(m.Text) == "":
		return FieldResult{Predicted: m.Text, Expected: expected, Status: constants.FieldEmpty}
	}

	p, e := normalize(m.Text), normalize(expected)
	res := FieldResult{
		Correct:    p == e,
		Predicted:  m.Text,
		Expected:   expected,
		Status:     constants.FieldIncorrect,
		Similarity: Similarity(p, e),
	}
	if res.Correct {
		res.Status = constants.FieldCorrect
	}
	return res
}

func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Similarity is 1 - normalized edit distance, in [0,1]. Identical strings
// (including two empty ones) score 1.
func Similarity(a, b string) float64 {
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if n == 0 {
		return 1
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(n)
}

// CharacterErrorRate is the code-point edit distance from reference to
// hypothesis divided by the reference length. Empty vs empty is 0; an empty
// side against a non-empty one is 1. Long hypotheses can exceed 1.
func CharacterErrorRate(reference, hypothesis string) float64 {
	refLen := utf8.RuneCountInString(reference)
	switch {
	case refLen == 0 && hypothesis == "":
		return 0
	case refLen == 0 || hypothesis == "":
		return 1
	}
	return float64(fuzzy.LevenshteinDistance(reference, hypothesis)) / float64(refLen)
}

// WordErrorRate applies the CharacterErrorRate policy to whitespace tokens.
func WordErrorRate(reference, hypothesis string) float64 {
	ref, hyp := strings.Fields(reference), strings.Fields(hypothesis)
	switch {
	case len(ref) == 0 && len(hyp) == 0:
		return 0
	case len(ref) == 0 || len(hyp) == 0:
		return 1
	}
	return float64(editDistance(ref, hyp)) / float64(len(ref))
}
