package dispatch

import "sort"

// frameEntry holds one scheduled frame callback. The registry owns one
// reference to each field until the entry fires or is torn down.
type frameEntry struct {
	callback any
	userData any
}

// ScheduleFrame registers callback to fire once the given frame number is
// reached or passed, borrowing a reference to callback and userData. At
// most one callback is held per frame; scheduling a second one for the
// same frame replaces the first and releases its references.
//
// ScheduleFrame is safe to call from any goroutine.
func (r *Registry) ScheduleFrame(frame int, callback, userData any) {
	r.retain(callback)
	r.retain(userData)

	var replaced frameEntry
	r.frameMu.Lock()
	if old, ok := r.frameCallbacks[frame]; ok {
		replaced = old
	}
	r.frameCallbacks[frame] = frameEntry{callback: callback, userData: userData}
	if frame > r.highestFrame {
		r.highestFrame = frame
	}
	r.frameMu.Unlock()

	r.release(replaced.callback)
	r.release(replaced.userData)
}

// FrameCallback fires and removes every callback scheduled at or before
// frame, in ascending frame order, synchronously on the calling
// goroutine and outside admission control. Each entry fires once: a
// second call for the same frame finds nothing and is a no-op. The
// callback receives its own frame number as the sender.
func (r *Registry) FrameCallback(frame int) {
	r.frameMu.Lock()
	if len(r.frameCallbacks) == 0 {
		r.frameMu.Unlock()
		return
	}
	var due []int
	for scheduled := range r.frameCallbacks {
		if scheduled <= frame {
			due = append(due, scheduled)
		}
	}
	sort.Ints(due)
	entries := make([]frameEntry, len(due))
	for i, scheduled := range due {
		entries[i] = r.frameCallbacks[scheduled]
		delete(r.frameCallbacks, scheduled)
	}
	r.frameMu.Unlock()

	for i, entry := range entries {
		r.invoke(entry.callback, uint64(due[i]), nil, entry.userData)
		r.release(entry.callback)
		r.release(entry.userData)
	}
}

// HighestFrame returns the largest frame number ever scheduled, a
// monotonically non-decreasing high-water mark.
func (r *Registry) HighestFrame() int {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	return r.highestFrame
}
