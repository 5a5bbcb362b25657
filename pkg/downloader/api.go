// Package downloader provides a modular system for retrieving remote resources.
// It supports multiple schemes (HTTP, HTTPS, file) and reports progress through
// a caller-supplied callback.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Progress receives byte counts as a transfer advances. total is -1
// when the remote side does not announce a length.
type Progress func(received, total int64)

// Downloader manages the retrieval of resources from various URIs.
type Downloader interface {
	// Download retrieves the resource at the specified URI and writes it to w.
	// The progress callback may be nil.
	Download(ctx context.Context, uri string, w io.Writer, progress Progress) error
}

// SchemeHandler defines the interface for handling specific URI schemes (e.g., "http://").
type SchemeHandler interface {
	// Download executes the download for a URI supported by this handler.
	Download(ctx context.Context, uri string, w io.Writer, progress Progress) error
	// Schemes returns the list of URI schemes (e.g., ["http", "https"]) this handler can process.
	Schemes() []string
}

// StatusError reports a non-OK HTTP response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// IsPermanent reports whether err will not go away on retry: client
// errors other than timeouts and rate limiting.
func IsPermanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	if se.Code == http.StatusRequestTimeout || se.Code == http.StatusTooManyRequests {
		return false
	}
	return se.Code >= 400 && se.Code < 500
}
