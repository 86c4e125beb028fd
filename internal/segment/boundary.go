// Package segment splits an ordered run of OCR'd pages into logical letters.
package segment

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

// BoundaryDetector decides whether a page opens a new letter. It holds only
// compiled, read-only patterns and is safe for concurrent use.
type BoundaryDetector struct {
	keywords []taxonomy.Keyword
	logger   *slog.Logger
}

func NewBoundaryDetector(tax *taxonomy.Compiled, logger *slog.Logger) *BoundaryDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoundaryDetector{keywords: tax.Boundary, logger: logger}
}

// IsNewDocumentBoundary reports whether pageText contains any title,
// salutation or regulatory keyword as a whole word or phrase.
func (d *BoundaryDetector) IsNewDocumentBoundary(pageText string) bool {
	_, ok := d.MatchedKeyword(pageText)
	return ok
}

// MatchedKeyword returns the first configured keyword found in pageText.
func (d *BoundaryDetector) MatchedKeyword(pageText string) (string, bool) {
	if strings.TrimSpace(pageText) == "" {
		return "", false
	}
	for _, kw := range d.keywords {
		ok, err := kw.Re.MatchString(pageText)
		if err != nil {
			d.logger.Warn("segment.boundary.match_failed", "keyword", kw.Text, "error", err)
			continue
		}
		if ok {
			return kw.Text, true
		}
	}
	return "", false
}
