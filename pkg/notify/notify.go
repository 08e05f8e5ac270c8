// Package notify coalesces buffer mutations into at most one externally
// visible change notification per quiescent window.
//
// Each Notifier is a small state machine owned by one logical field:
//
//	Idle    --Push-->  Pending (timer armed)
//	Pending --Push-->  Pending (timer reset, latest value kept)
//	Pending --timer->  emit, back to Idle
//	any     --Dispose-> Disposed (terminal, pending emission discarded)
//
// Mutations are totally ordered by arrival; only the most recent buffer
// state within a window is ever emitted.
package notify

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescent interval after the last mutation in a
// burst before the accumulated change is flushed.
const DefaultWindow = 1000 * time.Millisecond

// Change is the payload of a flushed notification.
type Change struct {
	FieldPath  string
	FieldOwner string
	Value      string
}

// State is the notifier's lifecycle state.
type State int

const (
	Idle State = iota
	Pending
	Disposed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Notifier debounces Push calls for one field. Safe for concurrent use.
type Notifier struct {
	fieldPath  string
	fieldOwner string
	window     time.Duration
	emit       func(Change)

	mu     sync.Mutex
	state  State
	latest string
	timer  *time.Timer
	gen    uint64
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithWindow overrides the quiescent window.
func WithWindow(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.window = d
		}
	}
}

// New creates a notifier for the field identified by fieldPath/fieldOwner.
// emit is invoked outside the notifier's lock, once per quiescent window.
func New(fieldPath, fieldOwner string, emit func(Change), opts ...Option) *Notifier {
	n := &Notifier{
		fieldPath:  fieldPath,
		fieldOwner: fieldOwner,
		window:     DefaultWindow,
		emit:       emit,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Push records a buffer mutation carrying the full resulting text. The
// pending timer, if any, is reset; pushes after Dispose are dropped.
func (n *Notifier) Push(value string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == Disposed {
		return
	}

	n.latest = value
	n.state = Pending
	n.gen++

	if n.timer != nil {
		n.timer.Stop()
	}
	gen := n.gen
	n.timer = time.AfterFunc(n.window, func() {
		n.fire(gen)
	})
}

// fire flushes the pending change if the arming generation is still
// current. A stale generation means Push or Dispose won the race.
func (n *Notifier) fire(gen uint64) {
	n.mu.Lock()
	if n.state != Pending || n.gen != gen {
		n.mu.Unlock()
		return
	}
	change := Change{
		FieldPath:  n.fieldPath,
		FieldOwner: n.fieldOwner,
		Value:      n.latest,
	}
	n.state = Idle
	n.timer = nil
	n.mu.Unlock()

	n.emit(change)
}

// Dispose tears the notifier down. A pending notification is discarded,
// never flushed, and no further emissions can occur.
func (n *Notifier) Dispose() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.state = Disposed
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// State returns the current lifecycle state.
func (n *Notifier) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}
