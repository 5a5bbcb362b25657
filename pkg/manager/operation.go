package manager

import (
	"context"

	"github.com/google/uuid"
)

// Operation is the cancellable handle returned for every retrieval.
// Mutable
type Operation struct {
	id     uuid.UUID
	url    string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newOperation(parent context.Context, url string) *Operation {
	ctx, cancel := context.WithCancel(parent)
	return &Operation{
		id:     uuid.New(),
		url:    url,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the unique identifier of this retrieval, used in logs.
func (o *Operation) ID() uuid.UUID { return o.id }

// URL returns the requested URL.
func (o *Operation) URL() string { return o.url }

// Cancel aborts the retrieval. The completion callback still fires,
// with a context error. A download shared with other operations keeps
// running until every interested operation has cancelled.
func (o *Operation) Cancel() {
	o.cancel()
}

// Done is closed once the completion callback has been invoked.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}
