// Package lexicon provides optional dictionary-based normalization of OCR
// words onto canonical spellings. The pipeline works without one; Identity is
// the fallback.
package lexicon

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Lookup returns the canonical forms of word, best first. An empty result
// means the word is unknown.
type Lookup interface {
	LookupCanonicalForms(ctx context.Context, word string) ([]string, error)
}

// Identity returns every word unchanged.
type Identity struct{}

func (Identity) LookupCanonicalForms(_ context.Context, word string) ([]string, error) {
	return []string{word}, nil
}

// MapDictionary is an in-memory synonym table keyed by lower-cased word.
type MapDictionary map[string][]string

// NewMapDictionary lower-cases keys and drops empty forms.
func NewMapDictionary(entries map[string][]string) MapDictionary {
	d := make(MapDictionary, len(entries))
	for word, forms := range entries {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" {
			continue
		}
		for _, f := range forms {
			if f = strings.TrimSpace(f); f != "" {
				d[key] = append(d[key], f)
			}
		}
	}
	return d
}

// LoadMapFile reads a YAML mapping of word -> list of canonical forms.
func LoadMapFile(path string) (MapDictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	var entries map[string][]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return NewMapDictionary(entries), nil
}

func (d MapDictionary) LookupCanonicalForms(_ context.Context, word string) ([]string, error) {
	return d[strings.ToLower(word)], nil
}

// Canonicalize rewrites every word of text to its first canonical form.
// Separators, unknown words and words whose lookup fails are left as is.
func Canonicalize(ctx context.Context, l Lookup, text string) string {
	if l == nil || text == "" {
		return text
	}

	cache := make(map[string]string)
	replace := func(word string) string {
		if r, ok := cache[word]; ok {
			return r
		}
		r := word
		forms, err := l.LookupCanonicalForms(ctx, word)
		if err == nil && len(forms) > 0 && forms[0] != "" {
			r = forms[0]
		}
		cache[word] = r
		return r
	}

	var b strings.Builder
	b.Grow(len(text))
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(replace(text[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(replace(text[start:]))
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
