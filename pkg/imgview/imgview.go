// Package imgview binds remote image URLs to UI views. It is glue:
// the retrieval manager does the caching and downloading, a dispatcher
// provides the UI goroutine, and this package keeps track of which URL
// a view is currently waiting for so a late result cannot clobber a
// view that has since been pointed elsewhere.
package imgview

import (
	"context"
	"image"

	"webimg/pkg/manager"
)

// View is anything that can show an image. Implementations are only
// ever called on the dispatcher goroutine.
type View interface {
	// SetImage replaces the displayed image. nil clears the view.
	SetImage(img image.Image)
}

// Dispatcher marshals closures onto the UI goroutine.
// uiloop.Loop satisfies it; a bubbletea program can satisfy it by
// forwarding closures as messages.
type Dispatcher interface {
	Dispatch(fn func())
}

// Progress receives byte counts on the UI goroutine.
type Progress func(received, total int64)

// Completed receives the final outcome on the UI goroutine. img is nil
// on failure, err is nil on success, url is always the requested URL.
type Completed func(img image.Image, err error, url string)

// ImageView associates one View with its most recently requested URL.
//
// All methods must be called on the dispatcher goroutine; the tracked
// URL is read and written only there, which is the whole concurrency
// story of this type.
// Mutable
type ImageView struct {
	view View
	disp Dispatcher
	mgr  *manager.Manager

	currentURL string
}

// New creates an adapter for view. Calls into view happen only on the
// disp goroutine.
func New(view View, disp Dispatcher, mgr *manager.Manager) *ImageView {
	return &ImageView{view: view, disp: disp, mgr: mgr}
}

// SetImageURL shows the image at url, clearing the view while the
// fetch is in flight.
func (v *ImageView) SetImageURL(url string) *manager.Operation {
	return v.SetImageURLFull(url, nil, 0, nil, nil)
}

// SetImageURLPlaceholder shows placeholder until url has loaded.
func (v *ImageView) SetImageURLPlaceholder(url string, placeholder image.Image) *manager.Operation {
	return v.SetImageURLFull(url, placeholder, 0, nil, nil)
}

// SetImageURLOptions shows placeholder until url has loaded, with
// retrieval flags.
func (v *ImageView) SetImageURLOptions(url string, placeholder image.Image, flags manager.Flags) *manager.Operation {
	return v.SetImageURLFull(url, placeholder, flags, nil, nil)
}

// SetImageURLFull is the underlying call every other overload fills
// defaults for. It applies placeholder immediately, records url as the
// view's pending request, and starts the retrieval. The returned
// handle cancels only the underlying retrieval; it never touches the
// view directly.
//
// progress and completed are both re-dispatched onto the UI goroutine.
// completed always fires exactly once, even when the result arrives
// after the view has moved on to another URL; only the view mutation
// is skipped in that case.
func (v *ImageView) SetImageURLFull(url string, placeholder image.Image, flags manager.Flags, progress Progress, completed Completed) *manager.Operation {
	// Placeholder first, before any cache or network activity.
	v.currentURL = url
	v.view.SetImage(placeholder)

	if url == "" {
		v.disp.Dispatch(func() {
			if completed != nil {
				completed(nil, manager.ErrEmptyURL, url)
			}
		})
		return nil
	}

	var mgrProgress manager.Progress
	if progress != nil {
		mgrProgress = func(received, total int64) {
			v.disp.Dispatch(func() {
				progress(received, total)
			})
		}
	}

	return v.mgr.Get(context.Background(), url, flags, mgrProgress,
		func(img image.Image, err error, from manager.Source, completedURL string) {
			v.disp.Dispatch(func() {
				// Stale-result guard: the view may have been
				// redirected while this fetch was in flight.
				if img != nil && v.currentURL == completedURL {
					v.view.SetImage(img)
				}
				if completed != nil {
					completed(img, err, completedURL)
				}
			})
		})
}

// ImageURL returns the URL the view is currently bound to.
func (v *ImageView) ImageURL() string {
	return v.currentURL
}
