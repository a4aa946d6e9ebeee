package dispatch

import "sync"

// Slot is a named registration point for a single lifecycle callback
// (viewport resize, exit, the drag/drop events). At most one handle is
// active per slot; installing a new callback replaces the previous one
// and releases its references. Slots live as long as their Registry.
type Slot struct {
	reg  *Registry
	name string

	mu     sync.Mutex
	handle *Handle
}

func (r *Registry) newSlot(name string) *Slot {
	s := &Slot{reg: r, name: name}
	r.slots = append(r.slots, s)
	return s
}

// Name returns the slot's fixed event name.
func (s *Slot) Name() string {
	return s.name
}

// Set installs a callback and user-data pair from the embedding
// environment, borrowing a reference to each, and releases whatever was
// installed before. A nil callback clears the slot.
func (s *Slot) Set(callback, userData any) {
	var handle *Handle
	if callback != nil {
		handle = s.reg.NewHandle(callback, userData, Borrow)
	}
	s.mu.Lock()
	old := s.handle
	s.handle = handle
	s.mu.Unlock()
	old.Release()
}

// Run submits an invocation of the installed callback to the call
// channel. With no callback installed it is a no-op returning nil.
func (s *Slot) Run(sender uint64, appData any, decrementAppData bool) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.Run(sender, appData, decrementAppData)
}

// RunBlocking invokes the installed callback synchronously on the
// calling goroutine. The slot retains the payload for the duration of
// the call, so a concurrent Set cannot release it mid-invocation.
func (s *Slot) RunBlocking(sender uint64, appData any, decrementAppData bool) {
	s.mu.Lock()
	callback := s.handle.callbackRef()
	userData := s.handle.userDataRef()
	s.reg.retain(callback)
	s.reg.retain(userData)
	s.mu.Unlock()

	if callback != nil {
		s.reg.invoke(callback, sender, appData, userData)
		if decrementAppData {
			s.reg.release(appData)
		}
	}
	s.reg.release(callback)
	s.reg.release(userData)
}

// clear releases the installed handle during registry teardown.
func (s *Slot) clear() {
	s.mu.Lock()
	old := s.handle
	s.handle = nil
	s.mu.Unlock()
	old.Release()
}

func (h *Handle) callbackRef() any {
	if h == nil {
		return nil
	}
	return h.callback
}

func (h *Handle) userDataRef() any {
	if h == nil {
		return nil
	}
	return h.userData
}
