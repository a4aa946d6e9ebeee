package dispatch

import (
	"sync"
	"testing"
)

// countingRetainer tracks the net reference count of every object it has
// seen, so tests can assert exact retain/release balance.
type countingRetainer struct {
	mu     sync.Mutex
	counts map[any]int
}

func newCountingRetainer() *countingRetainer {
	return &countingRetainer{counts: make(map[any]int)}
}

func (c *countingRetainer) Retain(ref any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[ref]++
}

func (c *countingRetainer) Release(ref any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[ref]--
}

// net returns the net reference delta for ref since tracking began.
func (c *countingRetainer) net(ref any) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[ref]
}

// invocation records one delivery to the embedding environment.
type invocation struct {
	callback any
	sender   uint64
	appData  any
	userData any
}

// recordingInvoker captures invocations in order.
type recordingInvoker struct {
	mu    sync.Mutex
	calls []invocation
}

func (ri *recordingInvoker) invoke(callback any, sender uint64, appData, userData any) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.calls = append(ri.calls, invocation{callback, sender, appData, userData})
}

func (ri *recordingInvoker) count() int {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	return len(ri.calls)
}

func (ri *recordingInvoker) at(t *testing.T, i int) invocation {
	t.Helper()
	ri.mu.Lock()
	defer ri.mu.Unlock()
	if i >= len(ri.calls) {
		t.Fatalf("invocation %d not recorded (have %d)", i, len(ri.calls))
	}
	return ri.calls[i]
}

// newTestRegistry builds a started registry wired to a counting retainer
// and a recording invoker.
func newTestRegistry(t *testing.T, opts Options) (*Registry, *countingRetainer, *recordingInvoker) {
	t.Helper()
	retainer := newCountingRetainer()
	invoker := &recordingInvoker{}
	opts.Retainer = retainer
	opts.Invoker = invoker.invoke
	reg := NewRegistry(opts)
	reg.Start()
	return reg, retainer, invoker
}
