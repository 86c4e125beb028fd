package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/letterscan/internal/segment"
)

var rePageImage = regexp.MustCompile(`-(\d+)\.png$`)

// pdfPages rasterizes every page with pdftoppm and OCRs the images in page
// order. A page whose OCR fails becomes an empty page so numbering and
// grouping stay aligned with the scan.
func (e *Extractor) pdfPages(ctx context.Context, path string) ([]segment.Page, error) {
	if n, err := PageCount(path); err != nil {
		e.logger.Warn("ocr.pdf.page_count_failed", "path", path, "error", err)
	} else {
		e.logger.Debug("ocr.pdf.page_count", "path", path, "pages", n)
	}

	tmpDir, err := os.MkdirTemp("", "letters-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.tmp.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	images, err := pageImages(prefix)
	if err != nil {
		return nil, err
	}
	if e.cfg.MaxPages > 0 && len(images) > e.cfg.MaxPages {
		images = images[:e.cfg.MaxPages]
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	pages := make([]segment.Page, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		txt, err := e.tesseract(ctx, img.path)
		if err != nil {
			e.logger.Warn("ocr.page.failed", "path", path, "page", img.number, "error", err)
		}
		pages = append(pages, segment.Page{Number: img.number, Text: txt})
	}
	return pages, nil
}

type pageImage struct {
	number int
	path   string
}

// pageImages lists prefix-N.png files sorted by N. pdftoppm zero-pads N to
// the width of the page count, but numeric order holds either way.
func pageImages(prefix string) ([]pageImage, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	out := make([]pageImage, 0, len(matches))
	for _, m := range matches {
		sub := rePageImage.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		out = append(out, pageImage{number: n, path: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out, nil
}

// PageCount validates the PDF with pdfcpu and returns its page count.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}
