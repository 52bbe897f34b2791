package delegate

import (
	"sync"

	"github.com/zhouwensi/Bridge/pkg/runtime"
)

// Event holds a combined handler behind a mutex. The zero value has no
// handlers.
type Event struct {
	mu      sync.Mutex
	handler *Delegate
}

func (e *Event) Add(d *Delegate) {
	e.mu.Lock()
	e.handler = Combine(e.handler, d)
	e.mu.Unlock()
}

// Remove unsubscribes the members of d. Pass the delegate given to Add (or a
// Bind/BindMethod delegate over the same pair); a second New over the same
// function removes nothing.
func (e *Event) Remove(d *Delegate) {
	e.mu.Lock()
	e.handler = Remove(e.handler, d)
	e.mu.Unlock()
}

// Handler returns the current combined handler, nil when empty.
func (e *Event) Handler() *Delegate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handler
}

// Raise invokes the handlers present at the time of the call. Raising an
// event without handlers does nothing.
func (e *Event) Raise(args ...runtime.Value) (runtime.Value, error) {
	h := e.Handler()
	if h == nil {
		return nil, nil
	}
	return h.Invoke(args...)
}
