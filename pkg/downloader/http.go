package downloader

import (
	"context"
	"io"
	"net/http"
)

// Immutable
type httpHandler struct {
	client    *http.Client
	userAgent string
}

// NewHTTPHandler creates the handler for http and https URIs.
// Cancellation and deadlines come from the request context.
func NewHTTPHandler(userAgent string) SchemeHandler {
	return &httpHandler{
		client: &http.Client{
			Timeout: 0, // Handled by context
		},
		userAgent: userAgent,
	}
}

func (h *httpHandler) Schemes() []string {
	return []string{"http", "https"}
}

func (h *httpHandler) Download(ctx context.Context, uri string, w io.Writer, progress Progress) error {
	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return err
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	pw := &progressWriter{
		progress: progress,
		total:    resp.ContentLength,
	}

	_, err = io.Copy(io.MultiWriter(w, pw), resp.Body)
	return err
}

// Mutable
type progressWriter struct {
	progress Progress
	total    int64
	received int64
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.received += int64(n)
	if pw.progress != nil {
		// Byte counts are passed through untouched; rendering
		// (percentages, humanized sizes) is the caller's business.
		pw.progress(pw.received, pw.total)
	}
	return n, nil
}
