package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/common"
)

// DefaultMaxDownload caps a single letter download.
const DefaultMaxDownload int64 = 64 << 20

// Download streams rawURL into a new file under dir and returns its path.
// The file keeps the URL's extension when it names a supported format and
// is saved as .pdf otherwise. Failures wrap common.ErrDownload; a malformed
// URL wraps common.ErrInvalidInput.
func Download(ctx context.Context, client *http.Client, rawURL, dir string, maxBytes int64, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDownload
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", common.NewAppError("INVALID_URL", fmt.Sprintf("pdf_url %q is not an http(s) URL", rawURL), common.ErrInvalidInput)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", downloadError("could not build request", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Error("ingest.download.failed", "url", u.Redacted(), "error", err)
		return "", downloadError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("ingest.download.bad_status", "url", u.Redacted(), "status", resp.StatusCode)
		return "", downloadError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	if resp.ContentLength > maxBytes {
		return "", downloadError(fmt.Sprintf("document is %s, limit is %s", humanize.IBytes(uint64(resp.ContentLength)), humanize.IBytes(uint64(maxBytes))), nil)
	}

	ext := constants.NormalizeExt(path.Ext(u.Path))
	if constants.MapExtToFormat(ext) == "" {
		ext = "pdf"
	}
	f, err := os.CreateTemp(dir, "letter-*."+ext)
	if err != nil {
		return "", downloadError("could not create file", err)
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxBytes {
		err = fmt.Errorf("body exceeds %s", humanize.IBytes(uint64(maxBytes)))
	}
	if err != nil {
		_ = os.Remove(f.Name())
		logger.Error("ingest.download.copy_failed", "url", u.Redacted(), "error", err)
		return "", downloadError("could not save document", err)
	}

	logger.Info("ingest.download.ok",
		"url", u.Redacted(),
		"path", f.Name(),
		"size", humanize.IBytes(uint64(n)),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return f.Name(), nil
}

func downloadError(msg string, cause error) error {
	if cause == nil {
		return common.NewAppError("DOWNLOAD_FAILED", msg, common.ErrDownload)
	}
	return common.NewAppError("DOWNLOAD_FAILED", msg, fmt.Errorf("%w: %v", common.ErrDownload, cause))
}
