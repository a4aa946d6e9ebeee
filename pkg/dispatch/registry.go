package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// DefaultMaxCallsPerFrame is the admission ceiling used when Options
// leaves MaxCallsPerFrame unset.
const DefaultMaxCallsPerFrame = 50

// Retainer manages reference counts on the embedding environment's
// callback and payload objects. Retain and Release must be safe to call
// from any goroutine; the registry never calls either with a nil ref.
type Retainer interface {
	Retain(ref any)
	Release(ref any)
}

// Invoker delivers a callback invocation to the embedding environment.
// sender identifies the originating item; appData carries the event
// payload and userData the value registered with the callback.
type Invoker func(callback any, sender uint64, appData, userData any)

// Options configure a Registry.
type Options struct {
	// MaxCallsPerFrame caps how many callback submissions are admitted
	// between drains. Zero selects DefaultMaxCallsPerFrame.
	MaxCallsPerFrame int

	// ManualCallbackManagement routes handle invocations into the job
	// staging area for the embedder to pull with TakeJobs, instead of
	// auto-running them on the call channel.
	ManualCallbackManagement bool

	// Retainer tracks references on embedding-environment objects.
	// Nil disables reference tracking.
	Retainer Retainer

	// Invoker delivers callback invocations to the embedding
	// environment. Nil turns every invocation into a no-op.
	Invoker Invoker
}

// Registry is the process-wide dispatch state: the task and call
// channels, the admission counter, the frame-callback table, the job
// staging area, and the named lifecycle slots. Construct one per
// application with NewRegistry and tear it down with Shutdown.
//
// Submission methods may be called from any goroutine. The drain methods
// (RunTasks, RunCallbacks, FrameCallback) must all be called from the
// same goroutine, normally the host loop.
type Registry struct {
	tasks *Queue[*Unit]
	calls *Queue[*Unit]

	callCount atomic.Int32
	maxCalls  int32
	running   atomic.Bool
	manual    bool

	retainer Retainer
	invoker  Invoker

	// frameMu guards the frame table and its high-water mark; frame
	// callbacks may be scheduled from any goroutine.
	frameMu        sync.Mutex
	frameCallbacks map[int]frameEntry
	highestFrame   int

	jobMu sync.Mutex
	jobs  *queue.Queue

	// Lifecycle slots, one per event the embedding environment can hook.
	ViewportResize *Slot
	Exit           *Slot
	DragEnter      *Slot
	DragLeave      *Slot
	DragOver       *Slot
	Drop           *Slot

	slots []*Slot
}

// NewRegistry constructs a stopped Registry. Submissions made before
// Start run synchronously on the submitting goroutine.
func NewRegistry(opts Options) *Registry {
	maxCalls := opts.MaxCallsPerFrame
	if maxCalls <= 0 {
		maxCalls = DefaultMaxCallsPerFrame
	}
	r := &Registry{
		tasks:          NewQueue[*Unit](),
		calls:          NewQueue[*Unit](),
		maxCalls:       int32(maxCalls),
		manual:         opts.ManualCallbackManagement,
		retainer:       opts.Retainer,
		invoker:        opts.Invoker,
		frameCallbacks: make(map[int]frameEntry),
		jobs:           queue.New(),
	}
	r.ViewportResize = r.newSlot("viewport_resize")
	r.Exit = r.newSlot("exit")
	r.DragEnter = r.newSlot("drag_enter")
	r.DragLeave = r.newSlot("drag_leave")
	r.DragOver = r.newSlot("drag_over")
	r.Drop = r.newSlot("drop")
	return r
}

// Start marks the dispatch loop active. Before Start, SubmitTask executes
// its closure synchronously; after Start, everything is queued. There is
// no transition back: teardown goes through Shutdown, not a stop flag.
func (r *Registry) Start() {
	r.running.Store(true)
}

// Running reports whether Start has been called.
func (r *Registry) Running() bool {
	return r.running.Load()
}

// MaxCallsPerFrame returns the admission ceiling.
func (r *Registry) MaxCallsPerFrame() int {
	return int(r.maxCalls)
}

// SubmitTask queues f on the task channel. Tasks are toolkit-internal
// continuations: they are always drained, never subject to admission
// control. If the registry has not started yet, f runs synchronously on
// the calling goroutine and nothing is queued. The returned Result is
// completed when f has run, in either case.
func (r *Registry) SubmitTask(f func() any) *Result {
	res := newResult()
	unit := NewUnit(func() { res.complete(f()) })
	if !r.running.Load() {
		unit.Invoke()
		return res
	}
	r.tasks.Push(unit)
	return res
}

// SubmitCallback queues f on the call channel, subject to admission
// control: once the per-cycle ceiling is reached the submission is
// refused and SubmitCallback returns nil. A refused call is dropped, not
// queued and not retried; the counter resets on the next RunCallbacks.
func (r *Registry) SubmitCallback(f func() any) *Result {
	if r.callCount.Add(1) > r.maxCalls {
		return nil
	}
	res := newResult()
	r.calls.Push(NewUnit(func() { res.complete(f()) }))
	return res
}

// RunTasks drains the task channel completely, invoking each unit in
// FIFO order. Tasks pushed by a running task are picked up in the same
// drain.
func (r *Registry) RunTasks() {
	for {
		unit, ok := r.tasks.TryPop()
		if !ok {
			return
		}
		unit.Invoke()
	}
}

// RunCallbacks drains the call channel completely, then resets the
// admission counter. It reports whether any callback ran, which the host
// loop uses to decide whether an extra frame is warranted.
func (r *Registry) RunCallbacks() bool {
	ran := false
	for {
		unit, ok := r.calls.TryPop()
		if !ok {
			break
		}
		unit.Invoke()
		ran = true
	}
	r.callCount.Store(0)
	return ran
}

// Shutdown tears down the registry: queued units are discarded without
// running, the frame table and job staging area are cleared, and every
// reference still held by a slot, frame entry, or staged job is released
// exactly once. Shutdown is idempotent; the registry must not be used
// afterwards.
func (r *Registry) Shutdown() {
	for {
		if _, ok := r.tasks.TryPop(); !ok {
			break
		}
	}
	for {
		if _, ok := r.calls.TryPop(); !ok {
			break
		}
	}
	r.callCount.Store(0)

	r.frameMu.Lock()
	entries := make([]frameEntry, 0, len(r.frameCallbacks))
	for frame, entry := range r.frameCallbacks {
		entries = append(entries, entry)
		delete(r.frameCallbacks, frame)
	}
	r.frameMu.Unlock()
	for _, entry := range entries {
		r.release(entry.callback)
		r.release(entry.userData)
	}

	for _, job := range r.TakeJobs() {
		r.ReleaseJob(job)
	}

	for _, slot := range r.slots {
		slot.clear()
	}
}

func (r *Registry) retain(ref any) {
	if ref == nil || r.retainer == nil {
		return
	}
	r.retainer.Retain(ref)
}

func (r *Registry) release(ref any) {
	if ref == nil || r.retainer == nil {
		return
	}
	r.retainer.Release(ref)
}

func (r *Registry) invoke(callback any, sender uint64, appData, userData any) {
	if callback == nil || r.invoker == nil {
		return
	}
	r.invoker(callback, sender, appData, userData)
}
