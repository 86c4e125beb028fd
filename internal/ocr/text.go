package ocr

import (
	"os"
	"strings"

	"github.com/joseph-ayodele/letterscan/internal/segment"
)

// textPages reads a plain-text dump where pages are separated by form feeds
// (pdftotext's convention). A trailing form feed does not add a page.
func textPages(path string) ([]segment.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitFormFeed(string(data)), nil
}

// SplitFormFeed splits text on '\f' into pages numbered from 1.
func SplitFormFeed(text string) []segment.Page {
	parts := strings.Split(text, "\f")
	if n := len(parts); n > 1 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	pages := make([]segment.Page, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, segment.Page{Number: i + 1, Text: Normalize(p)})
	}
	return pages
}
