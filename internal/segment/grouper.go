package segment

import (
	"sort"
	"strings"
)

// Page is one OCR'd page. Number is 1-based and informational.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is a logical letter: a contiguous run of pages.
type Document struct {
	Index int    `json:"index"`
	Pages []Page `json:"pages"`
	Text  string `json:"text"`
}

// PageNumbers lists the page numbers making up the document.
func (d Document) PageNumbers() []int {
	out := make([]int, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = p.Number
	}
	return out
}

// GroupPages walks pages in the given order and starts a new document on
// every page the detector flags. Pages are never reordered.
func GroupPages(pages []Page, d *BoundaryDetector) []Document {
	docs := make([]Document, 0)
	var buf []Page

	flush := func() {
		if len(buf) == 0 {
			return
		}
		docs = append(docs, newDocument(len(docs), buf))
		buf = nil
	}

	for _, p := range pages {
		if len(buf) > 0 && d.IsNewDocumentBoundary(p.Text) {
			flush()
		}
		buf = append(buf, p)
	}
	flush()

	return docs
}

func newDocument(index int, pages []Page) Document {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return Document{
		Index: index,
		Pages: pages,
		Text:  strings.Join(texts, "\n"),
	}
}

// Flatten returns every page of docs in document order.
func Flatten(docs []Document) []Page {
	var out []Page
	for _, d := range docs {
		out = append(out, d.Pages...)
	}
	return out
}

// SortPages orders pages by Number, keeping the input order of equal numbers.
// GroupPages itself never sorts; collaborators reading from directory
// listings or rasterizer output call this first.
func SortPages(pages []Page) []Page {
	out := append([]Page(nil), pages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
