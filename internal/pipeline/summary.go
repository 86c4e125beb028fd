package pipeline

import (
	"github.com/joseph-ayodele/letterscan/constants"
)

// Summary aggregates results across sources for evaluation runs.
type Summary struct {
	Sources           int                            `json:"sources"`
	Documents         int                            `json:"documents"`
	Scored            int                            `json:"scored"`
	ByType            map[constants.DocumentType]int `json:"by_type"`
	MeanCER           float64                        `json:"mean_character_error_rate"`
	MeanWER           float64                        `json:"mean_word_error_rate"`
	MeanFieldAccuracy float64                        `json:"mean_field_accuracy"`
	// FieldAccuracy is the percentage of scored documents where the field
	// was extracted correctly, per ground-truth field name.
	FieldAccuracy map[string]float64 `json:"field_accuracy"`
}

func Summarize(results []Result) Summary {
	s := Summary{
		ByType:        make(map[constants.DocumentType]int),
		FieldAccuracy: make(map[string]float64),
	}
	sources := make(map[string]struct{})
	seen := make(map[string]int)
	correct := make(map[string]int)

	for _, r := range results {
		sources[r.Source] = struct{}{}
		s.Documents++
		s.ByType[r.Type]++
		if r.Accuracy == nil {
			continue
		}
		s.Scored++
		s.MeanCER += r.Accuracy.CharacterErrorRate
		s.MeanWER += r.Accuracy.WordErrorRate
		s.MeanFieldAccuracy += r.Accuracy.OverallFieldAccuracy
		for name, f := range r.Accuracy.PerField {
			seen[name]++
			if f.Correct {
				correct[name]++
			}
		}
	}
	s.Sources = len(sources)
	if s.Scored > 0 {
		n := float64(s.Scored)
		s.MeanCER /= n
		s.MeanWER /= n
		s.MeanFieldAccuracy /= n
	}
	for name, n := range seen {
		s.FieldAccuracy[name] = float64(correct[name]) / float64(n) * 100
	}
	return s
}
