// Package notify debounces layout mutations into persistence notifications.
//
// A drag emits a mutation on every pointer move; the persistence boundary
// only wants the settled result. A [Notifier] collapses bursts of Changed
// calls into one callback after a quiet window, resetting the window on
// every new mutation. The final state is never dropped: Flush and Close
// deliver any pending layout immediately.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// DefaultQuiet is the debounce window used when none is configured.
const DefaultQuiet = 200 * time.Millisecond

// Notifier delivers the most recent layout to a callback once mutations go
// quiet. It is safe for concurrent use; the timer callback runs on its own
// goroutine.
type Notifier struct {
	quiet time.Duration
	fn    func(plan.Layout)
	ctx   context.Context

	mu      sync.Mutex
	timer   *time.Timer
	pending plan.Layout
	dirty   bool
	closed  bool

	// gen counts Changed calls. A timer callback only delivers when its
	// generation is still current: a stopped timer whose callback already
	// fired and is waiting on mu must not deliver a newer layout before the
	// fresh quiet window has elapsed.
	gen uint64
}

// New creates a notifier that calls fn with the latest layout after quiet
// with no further changes. A non-positive quiet selects DefaultQuiet. The
// callback must not call back into the notifier.
func New(ctx context.Context, quiet time.Duration, fn func(plan.Layout)) *Notifier {
	if ctx == nil {
		ctx = context.Background()
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Notifier{quiet: quiet, fn: fn, ctx: ctx}
}

// Changed records a new layout state and restarts the quiet window. The
// layout is cloned, so the caller may keep mutating its copy.
func (n *Notifier) Changed(l plan.Layout) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.pending = l.Clone()
	n.dirty = true
	n.gen++
	gen := n.gen
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.quiet, func() { n.deliver(gen, false) })
}

// Flush delivers any pending layout immediately instead of waiting out the
// quiet window. It is a no-op when nothing is pending.
func (n *Notifier) Flush() {
	n.deliver(0, true)
}

// Close flushes any pending layout and stops the notifier. Further Changed
// calls are ignored. Safe to call more than once.
func (n *Notifier) Close() {
	n.deliver(0, true)
	n.mu.Lock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()
}

// deliver runs the callback with the pending layout. Timer callbacks pass
// their generation; one from a superseded window finds gen advanced and
// returns without delivering. Flush and Close force delivery.
func (n *Notifier) deliver(gen uint64, force bool) {
	n.mu.Lock()
	if !n.dirty || n.closed || (!force && gen != n.gen) {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	l := n.pending
	n.pending = nil
	n.dirty = false
	n.mu.Unlock()

	observability.Editor().OnLayoutNotify(n.ctx, len(l))
	if n.fn != nil {
		n.fn(l)
	}
}
