package dispatch

// Mode selects how a Handle acquires its references.
type Mode int

const (
	// Borrow adds a fresh reference on top of the one the caller holds;
	// the caller keeps its own.
	Borrow Mode = iota
	// Transfer adopts the caller's existing reference without adding one.
	Transfer
)

// Handle owns one callback reference and one user-data reference on
// objects belonging to the embedding environment. The references are
// acquired at construction (Borrow) or adopted (Transfer) and released
// exactly once, by Release. A Handle whose references have been moved or
// released is inert: Run and RunBlocking on it are no-ops.
type Handle struct {
	reg      *Registry
	callback any
	userData any
}

// NewHandle wraps a callback and its user data in a Handle. With Borrow
// the handle retains both; with Transfer it takes over the references the
// caller already holds.
func (r *Registry) NewHandle(callback, userData any, mode Mode) *Handle {
	if mode == Borrow {
		r.retain(callback)
		r.retain(userData)
	}
	return &Handle{reg: r, callback: callback, userData: userData}
}

// Move transfers the handle's references into a new Handle and nulls the
// source, so a later Release on the source releases nothing.
func (h *Handle) Move() *Handle {
	moved := &Handle{reg: h.reg, callback: h.callback, userData: h.userData}
	h.callback = nil
	h.userData = nil
	return moved
}

// Release drops both held references and nulls the handle. Releasing a
// moved-from or already-released handle is a no-op.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.reg.release(h.callback)
	h.reg.release(h.userData)
	h.callback = nil
	h.userData = nil
}

// Run submits an invocation of the callback. The invocation carries its
// own references to the callback, the user data, and (when
// decrementAppData is false) appData, so the payloads outlive both the
// handle and the caller's frame. Exactly one reference to appData is
// released once the invocation has run: with decrementAppData true that
// consumes the caller's reference, with false it consumes the extra one
// taken here and the caller's survives.
//
// Under manual callback management the invocation is staged as a Job for
// the embedder to pull; otherwise it is submitted to the call channel.
// Run returns nil without invoking anything if the callback is unset or
// admission control refuses the submission.
func (h *Handle) Run(sender uint64, appData any, decrementAppData bool) *Result {
	if h == nil || h.callback == nil {
		return nil
	}
	reg := h.reg
	callback := h.callback
	userData := h.userData

	// The handle may be released before the queued invocation runs, so
	// the invocation holds its own references until then.
	reg.retain(callback)
	reg.retain(userData)
	if !decrementAppData {
		reg.retain(appData)
	}

	if reg.manual {
		res := newResult()
		reg.StageJob(Job{
			Sender:   sender,
			Callback: callback,
			AppData:  appData,
			UserData: userData,
			res:      res,
		})
		return res
	}

	res := reg.SubmitCallback(func() any {
		reg.invoke(callback, sender, appData, userData)
		reg.release(callback)
		reg.release(userData)
		reg.release(appData)
		return nil
	})
	if res == nil {
		// Refused: unwind so nothing leaks. One appData release covers
		// both modes, mirroring the accepted path.
		reg.release(callback)
		reg.release(userData)
		reg.release(appData)
	}
	return res
}

// RunBlocking invokes the callback synchronously on the calling
// goroutine, bypassing the queue and admission control. Used when the
// caller needs the invocation ordered before its own next statement, and
// accepts the re-entrancy that implies. The appData contract matches Run:
// the caller's reference is consumed unless decrementAppData is false.
func (h *Handle) RunBlocking(sender uint64, appData any, decrementAppData bool) {
	if h == nil || h.callback == nil {
		return
	}
	h.reg.invoke(h.callback, sender, appData, h.userData)
	if decrementAppData {
		h.reg.release(appData)
	}
}
