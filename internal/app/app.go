// Package app wires configuration into the pipeline, shared by letterd and
// the letters CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/letterscan/internal/async"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/extract"
	"github.com/joseph-ayodele/letterscan/internal/groundtruth"
	"github.com/joseph-ayodele/letterscan/internal/lexicon"
	"github.com/joseph-ayodele/letterscan/internal/ocr"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

type App struct {
	Config    *common.Config
	Taxonomy  *taxonomy.Compiled
	Truth     groundtruth.Store
	Processor *pipeline.Processor
	Files     *pipeline.FileRunner
	Handler   *async.PipelineHandler

	closers []func() error
	logger  *slog.Logger
}

// Build loads the taxonomy, opens the optional ground-truth store and
// lexicon and wires the processor. Close releases what Build opened.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	tax, err := LoadTaxonomy(cfg.Taxonomy.File)
	if err != nil {
		return nil, err
	}
	a.Taxonomy = tax

	truth, closeTruth, err := OpenGroundTruth(ctx, cfg.GroundTruth, logger)
	if err != nil {
		return nil, err
	}
	a.Truth = truth
	a.closers = append(a.closers, closeTruth)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithGroundTruth(truth),
		pipeline.WithRequireFormat(cfg.Taxonomy.RequireFormat),
	}
	if cfg.Lexicon.DBPath != "" {
		lex, closeLex, err := OpenLexicon(ctx, cfg.Lexicon.DBPath)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, closeLex)
		opts = append(opts, pipeline.WithLexicon(lex))
	}
	a.Processor = pipeline.New(tax, opts...)

	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	a.Files = pipeline.NewFileRunner(extract.NewOCRAdapter(ocrExtractor, logger), a.Processor, logger)
	a.Handler = &async.PipelineHandler{
		Files:     a.Files,
		Processor: a.Processor,
		Client:    &http.Client{Timeout: cfg.Download.Timeout},
		MaxBytes:  cfg.Download.MaxBytes,
		Logger:    logger,
	}

	logger.Info("app.ready",
		"taxonomy", tax.Name,
		"require_format", cfg.Taxonomy.RequireFormat,
		"ground_truth", cfg.GroundTruth.Path != "" || cfg.GroundTruth.DSN != "",
		"lexicon", cfg.Lexicon.DBPath != "",
	)
	return a, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// LoadTaxonomy compiles the built-in taxonomy, or the YAML file at path
// merged over it.
func LoadTaxonomy(path string) (*taxonomy.Compiled, error) {
	t := taxonomy.Default()
	if path != "" {
		var err error
		if t, err = taxonomy.LoadFile(path); err != nil {
			return nil, common.NewAppError("CONFIG_ERROR", "cannot load taxonomy "+path, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		}
	}
	c, err := taxonomy.Compile(t)
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "invalid taxonomy", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	return c, nil
}

// OpenGroundTruth returns a Postgres store when a DSN is set, a JSON store
// when a path is set, and a store that never matches otherwise.
func OpenGroundTruth(ctx context.Context, cfg common.GroundTruthConfig, logger *slog.Logger) (groundtruth.Store, func() error, error) {
	nop := func() error { return nil }
	switch {
	case cfg.DSN != "":
		s, err := groundtruth.OpenPostgres(ctx, groundtruth.PostgresConfig{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
			DialTimeout:     cfg.DialTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { s.Close(); return nil }, nil
	case cfg.Path != "":
		s, err := groundtruth.Load(cfg.Path, logger)
		if err != nil {
			return nil, nil, common.NewAppError("STORE", "cannot load ground truth "+cfg.Path, fmt.Errorf("%w: %v", common.ErrStore, err))
		}
		return s, nop, nil
	default:
		return groundtruth.Nop{}, nop, nil
	}
}

// OpenLexicon opens a YAML synonym map (.yaml, .yml) or a SQLite dictionary.
func OpenLexicon(ctx context.Context, path string) (lexicon.Lookup, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		d, err := lexicon.LoadMapFile(path)
		if err != nil {
			return nil, nil, common.NewAppError("CONFIG_ERROR", "cannot load lexicon "+path, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		}
		return d, func() error { return nil }, nil
	default:
		d, err := lexicon.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, common.NewAppError("STORE", "cannot open lexicon "+path, fmt.Errorf("%w: %v", common.ErrStore, err))
		}
		return d, d.Close, nil
	}
}
