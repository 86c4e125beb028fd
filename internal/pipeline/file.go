package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/extract"
)

// FileRunner puts the OCR stage in front of the processor.
type FileRunner struct {
	Pages     extract.PageSource
	Processor *Processor
	Logger    *slog.Logger
}

func NewFileRunner(src extract.PageSource, p *Processor, logger *slog.Logger) *FileRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRunner{Pages: src, Processor: p, Logger: logger}
}

// Run reads the pages of path and processes them. source names the input
// for ground-truth lookup and defaults to the file's base name.
func (r *FileRunner) Run(ctx context.Context, path, source string) ([]Result, error) {
	logger := common.LoggerFromContext(ctx, r.Logger)
	if source == "" {
		source = filepath.Base(path)
	}

	start := time.Now()
	pages, err := r.Pages.Pages(ctx, path)
	if err != nil {
		logger.Error("pipeline.ocr.failed", "path", path, "error", err)
		return nil, err
	}
	logger.Info("pipeline.ocr.ok", "path", path, "pages", len(pages), "elapsed_ms", time.Since(start).Milliseconds())

	return r.Processor.Process(ctx, Input{Source: source, Pages: pages})
}
