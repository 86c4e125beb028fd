package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/ingest"
	"github.com/joseph-ayodele/letterscan/internal/segment"
)

// OCRAdapter is the PageSource used by the binaries. Files go through the
// OCR collaborator; a directory of page_<n>.txt files (an earlier OCR run)
// is read as is.
type OCRAdapter struct {
	e      PageSource
	logger *slog.Logger
}

func NewOCRAdapter(e PageSource, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Pages(ctx context.Context, path string) ([]segment.Page, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, common.NewAppError("SOURCE_NOT_FOUND", fmt.Sprintf("cannot open %s", path), fmt.Errorf("%w: %v", common.ErrNotFound, err))
	}
	if !fi.IsDir() {
		return a.e.Pages(ctx, path)
	}
	if !ingest.IsPageDir(path) {
		return nil, common.NewAppError("UNSUPPORTED_FORMAT", fmt.Sprintf("%s has no page_<n>.txt files", path), common.ErrInvalidInput)
	}
	pages, err := ingest.LoadPageDir(path)
	if err != nil {
		return nil, common.NewAppError("PAGE_DIR_FAILED", "could not read page directory", fmt.Errorf("%w: %v", common.ErrOCR, err))
	}
	a.logger.Debug("extract.pages.from_dir", "path", path, "pages", len(pages))
	return pages, nil
}
