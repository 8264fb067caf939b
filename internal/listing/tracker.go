package listing

import (
	"context"
	"errors"
	"sync"
)

// ErrStale reports a result that was superseded by a newer request for the
// same logical query.
var ErrStale = errors.New("listing: superseded by a newer request")

type generation struct {
	n      uint64
	cancel context.CancelFunc
}

// Tracker hands out generations per logical query key. Starting a new
// generation cancels the previous one; results of any generation other than
// the latest are discarded.
type Tracker struct {
	mu   sync.Mutex
	next uint64
	live map[string]generation
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{live: make(map[string]generation)}
}

// Ticket identifies one generation.
type Ticket struct {
	tracker *Tracker
	key     string
	n       uint64
	cancel  context.CancelFunc
}

// Begin starts a generation for key and returns a context cancelled when a
// newer generation begins or the ticket is released.
func (t *Tracker) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	if prev, ok := t.live[key]; ok {
		prev.cancel()
	}
	t.next++
	n := t.next
	t.live[key] = generation{n: n, cancel: cancel}
	t.mu.Unlock()
	return ctx, &Ticket{tracker: t, key: key, n: n, cancel: cancel}
}

// Current reports whether no newer generation has begun for the key.
func (tk *Ticket) Current() bool {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	gen, ok := tk.tracker.live[tk.key]
	return ok && gen.n == tk.n
}

// Release cancels the ticket context and forgets the generation if it is
// still the latest.
func (tk *Ticket) Release() {
	tk.cancel()
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	if gen, ok := tk.tracker.live[tk.key]; ok && gen.n == tk.n {
		delete(tk.tracker.live, tk.key)
	}
}

// Fetch runs load under a new generation of key. A result that is no longer
// the latest by the time load returns is dropped and ErrStale is returned.
func Fetch[T any](ctx context.Context, t *Tracker, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, ticket := t.Begin(ctx, key)
	defer ticket.Release()

	result, err := load(ctx)
	if !ticket.Current() {
		return zero, ErrStale
	}
	if err != nil {
		return zero, err
	}
	return result, nil
}
