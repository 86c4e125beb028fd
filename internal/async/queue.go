// Package async runs letter jobs on a bounded worker pool, tracks their
// status and reports outcomes to caller-supplied webhooks.
package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/letterscan/internal/pipeline"
	"github.com/joseph-ayodele/letterscan/internal/segment"
)

// Job is one unit of work. Exactly one of Pages, URL or Path is set.
type Job struct {
	ID          uuid.UUID
	Source      string
	Pages       []segment.Page
	URL         string
	Path        string
	CallbackURL string
	SubmittedAt time.Time
	RequestID   string
}

// Handler runs one job to completion.
type Handler interface {
	Handle(ctx context.Context, job Job) ([]pipeline.Result, error)
}

type HandlerFunc func(ctx context.Context, job Job) ([]pipeline.Result, error)

func (f HandlerFunc) Handle(ctx context.Context, job Job) ([]pipeline.Result, error) {
	return f(ctx, job)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
