package async

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Notifier delivers job outcomes to webhook URLs. 5xx, 429 and transport
// errors are retried with exponential backoff; other statuses are final.
type Notifier struct {
	client     *http.Client
	logger     *slog.Logger
	maxRetries uint64
	initial    time.Duration
}

type NotifierOption func(*Notifier)

func WithRetries(max uint64, initial time.Duration) NotifierOption {
	return func(n *Notifier) {
		n.maxRetries = max
		if initial > 0 {
			n.initial = initial
		}
	}
}

func WithHTTPClient(c *http.Client) NotifierOption {
	return func(n *Notifier) {
		if c != nil {
			n.client = c
		}
	}
}

func NewNotifier(timeout time.Duration, logger *slog.Logger, opts ...NotifierOption) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n := &Notifier{
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		maxRetries: 3,
		initial:    500 * time.Millisecond,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

func (n *Notifier) Notify(ctx context.Context, url string, status Status) error {
	body, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode webhook: %w", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Letterscan-Job", status.JobID.String())

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("webhook returned %d", resp.StatusCode))
		}
	}

	b := backoff.NewExponentialBackOff(backoff.WithInitialInterval(n.initial))
	err = backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, n.maxRetries), ctx),
		func(err error, next time.Duration) {
			n.logger.Debug("async.webhook.retry", "url", url, "attempt", attempt, "next_ms", next.Milliseconds(), "error", err)
		})
	if err != nil {
		return err
	}
	n.logger.Info("async.webhook.ok", "url", url, "job_id", status.JobID, "attempts", attempt)
	return nil
}
