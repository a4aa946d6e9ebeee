// Package host drives the dispatch registry the way a render loop would:
// one drain cycle per frame, on a single goroutine, with a fault boundary
// around the externally supplied callbacks it invokes.
package host

import (
	"context"
	"time"

	"github.com/bzczb/pivot/pkg/dispatch"
	"github.com/bzczb/pivot/pkg/errors"
)

// DefaultFrameInterval is the tick period used when Options leaves
// FrameInterval unset; roughly a 60 Hz frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Options configure a Loop.
type Options struct {
	// Dispatch configures the registry the loop owns. The Invoker is
	// wrapped in a panic boundary: a callback that panics is reported
	// through pkg/errors and the loop keeps running.
	Dispatch dispatch.Options

	// FrameInterval is the tick period for Run. Zero selects
	// DefaultFrameInterval.
	FrameInterval time.Duration
}

// Loop owns a Registry and advances it one drain cycle at a time. All
// drain work happens on the goroutine that calls Tick or Run; submission
// entry points on the registry remain safe from any goroutine.
type Loop struct {
	reg      *dispatch.Registry
	interval time.Duration
	frame    int
}

// New builds a stopped Loop. Call Start (or Run, which starts it) before
// relying on queued execution.
func New(opts Options) *Loop {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	inner := opts.Dispatch.Invoker
	if inner != nil {
		opts.Dispatch.Invoker = func(callback any, sender uint64, appData, userData any) {
			defer errors.Recover("host.callback")
			inner(callback, sender, appData, userData)
		}
	}

	return &Loop{
		reg:      dispatch.NewRegistry(opts.Dispatch),
		interval: interval,
	}
}

// Registry exposes the loop's dispatch registry for submissions and slot
// registration.
func (l *Loop) Registry() *dispatch.Registry {
	return l.reg
}

// Start marks the registry running. Idempotent.
func (l *Loop) Start() {
	l.reg.Start()
}

// Frame returns the number of completed ticks.
func (l *Loop) Frame() int {
	return l.frame
}

// Tick runs one drain cycle: tasks first (they may enqueue callbacks),
// then callbacks, then the callbacks scheduled for the new frame number.
// It reports whether any callback ran, the signal a render loop uses to
// schedule an extra frame.
func (l *Loop) Tick() bool {
	l.frame++
	l.reg.RunTasks()
	ran := l.reg.RunCallbacks()
	l.reg.FrameCallback(l.frame)
	return ran
}

// Run starts the registry and ticks at the configured interval until ctx
// is canceled, then tears the registry down and returns ctx's error.
func (l *Loop) Run(ctx context.Context) error {
	l.Start()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Close tears down the registry: queued work is discarded and every
// reference held by slots, frame entries, and staged jobs is released.
func (l *Loop) Close() {
	l.reg.Shutdown()
}
