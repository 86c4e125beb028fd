// Package extract applies per-type extraction grammars to letter text.
package extract

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

// Extractor is stateless apart from the compiled taxonomy and may be shared.
type Extractor struct {
	tax    *taxonomy.Compiled
	logger *slog.Logger
}

func New(tax *taxonomy.Compiled, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{tax: tax, logger: logger}
}

// ExtractFields runs the grammar for t (the default grammar when t has none)
// over text. Fields are evaluated in declared order; for each field the first
// alternative producing a non-empty capture wins. It never fails: fields that
// do not match, or whose match errors out, are left absent.
func (e *Extractor) ExtractFields(text string, t constants.DocumentType) Fields {
	out := make(Fields)
	if text == "" {
		return out
	}

	g := e.tax.GrammarFor(t)
	for _, field := range g.Fields {
		for i, p := range field.Alternatives {
			m, ok := e.apply(p, text)
			if !ok {
				continue
			}
			out[field.Name] = m
			if i > 0 {
				e.logger.Debug("extract.field.fallback", "type", t, "field", field.Name, "alternative", i)
			}
			break
		}
	}
	return out
}

func (e *Extractor) apply(p taxonomy.CompiledPattern, text string) (FieldMatch, bool) {
	m, err := p.Re.FindStringMatch(text)
	if err != nil {
		e.logger.Warn("extract.field.match_failed", "pattern", p.Re.String(), "error", err)
		return FieldMatch{}, false
	}
	if m == nil {
		return FieldMatch{}, false
	}

	start := -1
	parts := make([]string, 0, len(p.Groups))
	for _, n := range p.Groups {
		g := m.GroupByNumber(n)
		if g == nil || len(g.Captures) == 0 || g.Length == 0 {
			continue
		}
		raw := g.String()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if start < 0 {
			start = g.Index + leadingSpaceRunes(raw)
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return FieldMatch{}, false
	}

	value := strings.Join(parts, p.Join)
	return FieldMatch{
		Text:   value,
		Start:  start,
		Length: utf8.RuneCountInString(value),
	}, true
}

func leadingSpaceRunes(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}
