package downloader

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
)

// Immutable
type retrier struct {
	next       Downloader
	maxRetries uint64
}

// NewRetryDownloader wraps next with exponential backoff on transient
// failures. Permanent failures (4xx, bad URIs) are not retried. Each
// attempt downloads into a scratch buffer so w only ever sees the
// bytes of a successful transfer.
func NewRetryDownloader(next Downloader, maxRetries uint64) Downloader {
	return &retrier{next: next, maxRetries: maxRetries}
}

func (r *retrier) Download(ctx context.Context, uri string, w io.Writer, progress Progress) error {
	var buf bytes.Buffer

	attempt := 0
	op := func() error {
		attempt++
		buf.Reset()
		err := r.next.Download(ctx, uri, &buf, progress)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || IsPermanent(err) {
			return backoff.Permanent(err)
		}
		slog.Debug("Retrying download", "uri", uri, "attempt", attempt, "error", err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return err
	}

	_, err := io.Copy(w, &buf)
	return err
}
