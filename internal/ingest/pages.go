package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/segment"
)

// LoadPageDir reads page_<n>.txt files from dir, ordered by n (page_2
// before page_10). Other files are ignored. Text is returned as stored.
func LoadPageDir(dir string) ([]segment.Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read page dir: %w", err)
	}

	pages := make([]segment.Page, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := pageNumber(e.Name())
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		pages = append(pages, segment.Page{Number: n, Text: string(data)})
	}
	return segment.SortPages(pages), nil
}

// IsPageDir reports whether dir holds at least one page_<n>.txt file.
func IsPageDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if _, ok := pageNumber(e.Name()); ok && !e.IsDir() {
			return true
		}
	}
	return false
}

func pageNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, constants.PageFilePrefix) || constants.NormalizeExt(filepath.Ext(name)) != "txt" {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, constants.PageFilePrefix), filepath.Ext(name))
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
