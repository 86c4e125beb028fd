package extract

import (
	"context"
	"sort"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/segment"
)

// PageSource is Stage 1: file -> ordered page texts.
type PageSource interface {
	Pages(ctx context.Context, path string) ([]segment.Page, error)
}

// FieldExtractor is Stage 2: letter text -> named fields.
type FieldExtractor interface {
	ExtractFields(text string, t constants.DocumentType) Fields
}

// FieldMatch is one extracted field. Start and Length count Unicode code
// points. Start is the offset in the letter text of the first selected
// capture group; Length is the length of Text. For a single-group pattern
// the pair spans Text in the letter. For a multi-group pattern (signature
// blocks) Text is the captures joined with the pattern's separator, so
// Start still marks where the first capture begins but Start+Length need
// not end on the last capture.
type FieldMatch struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

// Fields maps field name to match. A missing key means no pattern of the
// field matched; it is never stored as an empty entry.
type Fields map[string]FieldMatch

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Values flattens the fields to name -> text.
func (f Fields) Values() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v.Text
	}
	return out
}
