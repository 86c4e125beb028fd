// Package ocr turns scanned letters (PDF, image or plain text dumps) into
// ordered page texts by driving pdftoppm and tesseract.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/segment"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "ind"
	TessdataDir   string
	DPI           int // rasterization DPI, default 300
	MaxPages      int // 0 = no limit
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner swaps the command runner (tests use a fake).
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "ind"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, logger: logger}
	e.runner = execRunner{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pages reads path into pages numbered from 1, in page order. Failures are
// wrapped in common.ErrOCR.
func (e *Extractor) Pages(ctx context.Context, path string) ([]segment.Page, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	e.logger.Debug("ocr.start", "path", path, "format", format)

	var (
		pages []segment.Page
		err   error
	)
	switch format {
	case constants.PDF:
		pages, err = e.pdfPages(ctx, path)
	case constants.IMAGE:
		pages, err = e.imagePages(ctx, path)
	case constants.TXT:
		pages, err = textPages(path)
	default:
		return nil, common.NewAppError("UNSUPPORTED_FORMAT", fmt.Sprintf("unsupported extension %q", ext), common.ErrInvalidInput)
	}
	if err != nil {
		e.logger.Error("ocr.failed", "path", path, "format", format, "error", err)
		return nil, common.NewAppError("OCR_FAILED", "could not read pages from "+filepath.Base(path), fmt.Errorf("%w: %v", common.ErrOCR, err))
	}

	e.logger.Info("ocr.ok", "path", path, "format", format, "pages", len(pages), "elapsed_ms", time.Since(start).Milliseconds())
	return pages, nil
}

func (e *Extractor) imagePages(ctx context.Context, path string) ([]segment.Page, error) {
	txt, err := e.tesseract(ctx, path)
	if err != nil {
		return nil, err
	}
	return []segment.Page{{Number: 1, Text: txt}}, nil
}

// tesseract <file> stdout -l <lang> [--tessdata-dir <dir>]
func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w: %s", filepath.Base(path), err, truncate(string(errb), 512))
	}
	return Normalize(string(out)), nil
}
