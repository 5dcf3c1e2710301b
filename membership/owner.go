package membership

import "context"

// Owner serialises all State mutations onto a single goroutine via a
// command channel, the Go equivalent of running every State method on
// one cooperative task: callers on other goroutines never touch State
// directly, only submit closures that Owner runs in submission order on
// its one loop.
type Owner struct {
	state *State
	cmds  chan func(*State)
}

// NewOwner creates an Owner wrapping a fresh State. Run must be started
// before any Submit/Call is issued.
func NewOwner(shutdown CancelHandle) *Owner {
	return &Owner{
		state: New(shutdown),
		cmds:  make(chan func(*State)),
	}
}

// Run drains the command channel until ctx is cancelled. It is meant to
// be the body of the daemon's one dedicated state goroutine.
func (o *Owner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-o.cmds:
			cmd(o.state)
		}
	}
}

// Submit enqueues fn to run on the owner goroutine and blocks until it
// has been accepted (not until it has run); use Call when the result is
// needed synchronously.
func (o *Owner) Submit(fn func(*State)) {
	o.cmds <- fn
}

// Call enqueues fn, waits for it to run on the owner goroutine, and
// returns its result. This is how per-connection handler goroutines get
// a synchronous-looking response while State itself stays single
// writer.
func Call[T any](o *Owner, fn func(*State) T) T {
	done := make(chan T, 1)
	o.cmds <- func(s *State) {
		done <- fn(s)
	}
	return <-done
}
