package dispatch

// Unit is a single-shot executable value. Ownership of a Unit moves into
// the queue node that carries it; the consumer invokes it exactly once.
// Invoking a spent Unit, or the zero Unit, is a no-op.
type Unit struct {
	fn func()
}

// NewUnit wraps fn in a Unit.
func NewUnit(fn func()) *Unit {
	return &Unit{fn: fn}
}

// Invoke runs the wrapped closure at most once.
func (u *Unit) Invoke() {
	if u == nil || u.fn == nil {
		return
	}
	fn := u.fn
	u.fn = nil
	fn()
}

// Spent reports whether the unit has already run or never held a closure.
func (u *Unit) Spent() bool {
	return u == nil || u.fn == nil
}

// Result is the deferred outcome of a submitted closure. It completes
// exactly once, when the closure runs. A nil *Result from a submission
// means the submission was refused by admission control.
type Result struct {
	done chan struct{}
	val  any
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

// complete records the closure's value and releases waiters. Called once,
// by the unit that runs the closure.
func (r *Result) complete(v any) {
	r.val = v
	close(r.done)
}

// Done returns a channel that is closed once the closure has run.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the closure has run and returns its value.
func (r *Result) Wait() any {
	<-r.done
	return r.val
}

// Value returns the closure's value if it has run, or false if it is
// still pending.
func (r *Result) Value() (any, bool) {
	select {
	case <-r.done:
		return r.val, true
	default:
		return nil, false
	}
}
