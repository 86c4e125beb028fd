package groundtruth

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Store looks up the ground truth of the index-th (0-based) logical document
// of a source that grouped into total documents.
type Store interface {
	Lookup(ctx context.Context, source string, index, total int) (Record, bool, error)
}

// Key identifies a record: DocIndex is 1-based, 0 means "the whole source".
type Key struct {
	Source   string
	DocIndex int
}

func (k Key) String() string {
	if k.DocIndex == 0 {
		return k.Source
	}
	return k.Source + "#" + strconv.Itoa(k.DocIndex)
}

// ParseKey splits "name#3" into its source and document number. Anything
// that does not end in "#<positive int>" is a whole-source key.
func ParseKey(s string) Key {
	if i := strings.LastIndex(s, "#"); i > 0 {
		if n, err := strconv.Atoi(s[i+1:]); err == nil && n > 0 {
			return Key{Source: s[:i], DocIndex: n}
		}
	}
	return Key{Source: s}
}

// Keys lists the candidate keys for a document, most specific first.
// Per-document keys ("<source>#<index+1>") always apply; a whole-source key
// only applies when the source produced exactly one document, so a multi-letter
// scan without per-document truth is not scored. Each key is tried with the
// source's base name and then with its extension stripped.
func Keys(source string, index, total int) []Key {
	names := sourceNames(source)
	keys := make([]Key, 0, 2*len(names))
	for _, n := range names {
		keys = append(keys, Key{Source: n, DocIndex: index + 1})
	}
	if total == 1 && index == 0 {
		for _, n := range names {
			keys = append(keys, Key{Source: n})
		}
	}
	return keys
}

func sourceNames(source string) []string {
	base := filepath.Base(strings.TrimSpace(source))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return nil
	}
	names := []string{base}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		names = append(names, strings.TrimSuffix(base, ext))
	}
	return names
}

// Nop never finds a record.
type Nop struct{}

func (Nop) Lookup(context.Context, string, int, int) (Record, bool, error) {
	return Record{}, false, nil
}

func validateIndex(index, total int) error {
	if index < 0 || total <= 0 || index >= total {
		return fmt.Errorf("document index %d out of range for %d documents", index, total)
	}
	return nil
}
