package manager

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// flight tracks one shared in-flight download: who is listening for
// progress events and how many operations still want the result. The
// shared context is cancelled only when the last subscriber leaves.
// Mutable
type flight struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	subs map[uuid.UUID]Progress
	refs int
}

func newFlight() *flight {
	ctx, cancel := context.WithCancel(context.Background())
	return &flight{
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[uuid.UUID]Progress),
	}
}

func (f *flight) subscribe(id uuid.UUID, p Progress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs++
	if p != nil {
		f.subs[id] = p
	}
}

// leave drops one subscriber and cancels the shared download when
// nobody is left.
func (f *flight) leave(id uuid.UUID) {
	f.mu.Lock()
	delete(f.subs, id)
	f.refs--
	last := f.refs <= 0
	f.mu.Unlock()

	if last {
		f.cancel()
	}
}

// broadcast fans a progress event out to every subscriber.
func (f *flight) broadcast(received, total int64) {
	f.mu.Lock()
	subs := make([]Progress, 0, len(f.subs))
	for _, p := range f.subs {
		subs = append(subs, p)
	}
	f.mu.Unlock()

	for _, p := range subs {
		p(received, total)
	}
}
