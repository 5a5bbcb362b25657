package downloader

import (
	"context"
	"io"
	"net/url"
	"os"
)

// fileHandler serves file:// URIs, mostly useful for local galleries
// and tests.
// Immutable
type fileHandler struct{}

func NewFileHandler() SchemeHandler {
	return fileHandler{}
}

func (fileHandler) Schemes() []string {
	return []string{"file"}
}

func (fileHandler) Download(ctx context.Context, uri string, w io.Writer, progress Progress) error {
	u, err := url.Parse(uri)
	if err != nil {
		return err
	}

	f, err := os.Open(u.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	total := int64(-1)
	if fi, err := f.Stat(); err == nil {
		total = fi.Size()
	}

	pw := &progressWriter{progress: progress, total: total}
	_, err = io.Copy(io.MultiWriter(w, pw), f)
	return err
}
