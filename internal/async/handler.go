package async

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/ingest"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
)

// PipelineHandler runs jobs through download, OCR and the processor. The
// HTTP API uses it for synchronous requests too.
type PipelineHandler struct {
	Files     *pipeline.FileRunner
	Processor *pipeline.Processor
	Client    *http.Client
	MaxBytes  int64
	TempDir   string
	Logger    *slog.Logger
}

func (h *PipelineHandler) Handle(ctx context.Context, job Job) ([]pipeline.Result, error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case len(job.Pages) > 0:
		return h.Processor.Process(ctx, pipeline.Input{Source: job.Source, Pages: job.Pages})
	case job.URL != "":
		dir, err := os.MkdirTemp(h.TempDir, "letters-dl-*")
		if err != nil {
			return nil, common.NewAppError("INTERNAL", "could not create work dir", err)
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				logger.Warn("async.tmp.cleanup_failed", "dir", dir, "error", err)
			}
		}()
		file, err := ingest.Download(ctx, h.Client, job.URL, dir, h.MaxBytes, logger)
		if err != nil {
			return nil, err
		}
		source := job.Source
		if source == "" {
			source = urlBase(job.URL)
		}
		return h.Files.Run(ctx, file, source)
	case job.Path != "":
		return h.Files.Run(ctx, job.Path, job.Source)
	default:
		return nil, common.NewAppError("INVALID_INPUT", "job has no pages, url or path", common.ErrInvalidInput)
	}
}

func urlBase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "download.pdf"
	}
	return path.Base(u.Path)
}
