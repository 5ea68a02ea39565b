// Package pipeline provides the sequential asynchronous step runner
// that drives form initialization. Steps run strictly one at a time:
// step N+1 never starts until step N reports back through Advance.
package pipeline

// Step is one unit of the sequence. A step must eventually call
// r.Advance exactly once, synchronously or after its own asynchronous
// work resolves. A step that never calls Advance stalls the sequence
// permanently; guarding against that with timeouts is the
// collaborator's job, not the runner's.
type Step func(r *Runner, args any)

// Hooks observe the sequence. OnStepDone fires after every successful
// step, OnFail once on the first failure, OnFinally once when the
// queue drains.
type Hooks struct {
	OnStepDone func(message string)
	OnFail     func(message string)
	OnFinally  func(message string)
}

// Runner executes an ordered step list with uniform success/failure
// signaling. It is single-threaded by contract: all Advance calls
// happen on the owning event loop, never concurrently.
type Runner struct {
	queue    []Step
	hooks    Hooks
	started  bool
	stopped  bool
	finished bool
}

// New constructs a runner over the given steps. An empty or nil step
// list is integration misuse and panics: a sequence with nothing to
// run indicates a wiring bug, not a runtime condition.
func New(steps []Step, hooks Hooks) *Runner {
	if len(steps) == 0 {
		panic("pipeline: runner constructed without steps")
	}
	queue := make([]Step, len(steps))
	copy(queue, steps)
	return &Runner{queue: queue, hooks: hooks}
}

// Start begins execution with an implicit success seed.
func (r *Runner) Start(message string) {
	if r.started {
		panic("pipeline: runner started twice")
	}
	r.started = true
	r.Advance(true, message, nil)
}

// Advance is the step callback. On failure it invokes OnFail and
// stops; remaining steps are never run. On success it invokes
// OnStepDone, then either pops and runs the next step or, when the
// queue is empty, invokes OnFinally. Calling Advance after the queue
// has drained is a no-op beyond the single OnFinally invocation.
// Re-entrant calls from within a step's own synchronous failure path
// are supported.
func (r *Runner) Advance(success bool, message string, args any) {
	if r.stopped || r.finished {
		return
	}
	if !success {
		r.stopped = true
		if r.hooks.OnFail != nil {
			r.hooks.OnFail(message)
		}
		return
	}
	if r.hooks.OnStepDone != nil {
		r.hooks.OnStepDone(message)
	}
	if len(r.queue) == 0 {
		r.finished = true
		if r.hooks.OnFinally != nil {
			r.hooks.OnFinally(message)
		}
		return
	}
	next := r.queue[0]
	r.queue = r.queue[1:]
	next(r, args)
}

// Halted reports whether the sequence stopped on a failure.
func (r *Runner) Halted() bool { return r.stopped }

// Finished reports whether every step completed successfully.
func (r *Runner) Finished() bool { return r.finished }

// Remaining returns the number of steps not yet started.
func (r *Runner) Remaining() int { return len(r.queue) }
