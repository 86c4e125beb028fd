package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"LETTERS_HTTP_ADDR", "OCR_DPI", "QUEUE_WORKERS", "LETTERS_WATCH_DEBOUNCE", "DOWNLOAD_MAX_BYTES"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, ":3000", cfg.Server.HTTPAddr)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, int64(64<<20), cfg.Download.MaxBytes)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LETTERS_HTTP_ADDR", ":8080")
	t.Setenv("OCR_DPI", "200")
	t.Setenv("QUEUE_WORKERS", "not-a-number")
	t.Setenv("REQUIRE_INSTITUTION_FORMAT", "true")
	t.Setenv("QUEUE_PROCESS_TIMEOUT", "90s")

	cfg := LoadConfig()
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.True(t, cfg.Taxonomy.RequireFormat)
	assert.Equal(t, 90*time.Second, cfg.Queue.ProcessTimeout)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no http addr", func(c *Config) { c.Server.HTTPAddr = "" }},
		{"two truth sources", func(c *Config) { c.GroundTruth.Path = "gt.json"; c.GroundTruth.DSN = "postgres://x" }},
		{"zero dpi", func(c *Config) { c.OCR.DPI = 0 }},
		{"no workers", func(c *Config) { c.Queue.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			cfg.Server.HTTPAddr = ":3000"
			cfg.GroundTruth.Path, cfg.GroundTruth.DSN = "", ""
			cfg.OCR.DPI = 300
			cfg.Queue.Workers = 1
			tt.mutate(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NewAppError("X", "bad", ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", ErrNotFound), http.StatusNotFound},
		{NewAppError("DOWNLOAD_FAILED", "upstream 404", ErrDownload), http.StatusBadGateway},
		{ErrQueueClosed, http.StatusServiceUnavailable},
		{ErrOCR, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestPublicMessage(t *testing.T) {
	err := WrapError(NewAppError("STORE", "ground truth unavailable", errors.New("dial tcp: refused")), "lookup")
	assert.Equal(t, "ground truth unavailable", PublicMessage(err))
	assert.Equal(t, "boom", PublicMessage(errors.New("boom")))
	assert.Nil(t, WrapError(nil, "noop"))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("source", "", Required).
		Field("source", strings.Repeat("x", 5), MaxLength(4)).
		Field("job_id", "nope", UUID).
		Field("pdf_url", "ftp://host/a.pdf", HTTPURL).
		Field("callback_url", "", HTTPURL).
		Check(false, "pages", nil, "pages or pdf_url is required")

	require.True(t, v.HasErrors())
	require.Len(t, v.Errors(), 5)

	err := v.Error()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, PublicMessage(err), "must be a valid UUID")
	assert.Contains(t, PublicMessage(err), "must be at most 4 characters")

	ok := NewValidator().
		Field("job_id", "6f1c7a3e-1b2d-4c5e-8f9a-0b1c2d3e4f5a", UUID).
		Field("pdf_url", "https://example.org/a.pdf", HTTPURL)
	assert.NoError(t, ok.Error())
	assert.Empty(t, ok.ErrorMessage())
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithJobID(WithRequestID(context.Background(), "req-1"), "job-9")
	LoggerFromContext(ctx, base).Info("hello")

	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Contains(t, buf.String(), "job_id=job-9")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, JobIDFromContext(context.Background()))
}
