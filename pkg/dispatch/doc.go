// Package dispatch provides the callback and task dispatch core of the
// Pivot toolkit.
//
// The toolkit's render loop is single-threaded, but work arrives from
// anywhere: user callbacks fired by input events, continuations scheduled
// by toolkit internals, and callbacks keyed to a future frame. This
// package funnels all of that into one serialized execution point.
//
// # Registry
//
// Registry is the hub. It owns two unbounded FIFO channels of runnable
// units: a task channel for toolkit-internal continuations and a call
// channel for externally supplied callbacks. Any goroutine may submit;
// exactly one goroutine (the host loop) drains, once per frame:
//
//	reg := dispatch.NewRegistry(dispatch.Options{...})
//	reg.Start()
//	for running {
//	    reg.RunTasks()
//	    reg.RunCallbacks()
//	    reg.FrameCallback(frame)
//	}
//
// Tasks are always drained completely. Callback submissions are subject
// to admission control: once MaxCallsPerFrame submissions have been
// accepted in a drain cycle, further submissions are refused (a nil
// Result) until RunCallbacks resets the counter. This is the only
// load-shedding mechanism; a refused submission is dropped, not retried.
//
// # Callback handles
//
// Callbacks and their payloads are opaque objects owned by the embedding
// environment. Handle tracks one callback plus one user-data reference
// through an injected Retainer, retaining on borrow and releasing exactly
// once, so a payload queued from one goroutine stays alive until the
// dispatcher runs it. Slot pairs a Handle with a fixed lifecycle event
// name (viewport resize, exit, drag enter/leave/over, drop).
//
// # Ordering
//
// Each channel is FIFO on its own. No order is defined between the task
// channel, the call channel, and frame callbacks; the host loop's call
// order is the only merge point.
package dispatch
