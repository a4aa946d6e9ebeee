package dispatch

import (
	"testing"
)

func TestSubmitTaskBeforeStartRunsSynchronously(t *testing.T) {
	reg := NewRegistry(Options{})

	ran := false
	res := reg.SubmitTask(func() any {
		ran = true
		return "early"
	})
	if !ran {
		t.Fatal("pre-start task should run before SubmitTask returns")
	}
	if v, ok := res.Value(); !ok || v != "early" {
		t.Errorf("pre-start result: got (%v, %v), want (early, true)", v, ok)
	}
	if !reg.tasks.Empty() {
		t.Error("pre-start task must not be queued")
	}
}

func TestSubmitTaskAfterStartQueues(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.Start()

	ran := false
	res := reg.SubmitTask(func() any {
		ran = true
		return 3
	})
	if ran {
		t.Fatal("task ran before RunTasks")
	}
	if _, ok := res.Value(); ok {
		t.Error("result completed before RunTasks")
	}

	reg.RunTasks()
	if !ran {
		t.Fatal("task did not run during RunTasks")
	}
	if v, ok := res.Value(); !ok || v != 3 {
		t.Errorf("result after drain: got (%v, %v), want (3, true)", v, ok)
	}
}

func TestRunTasksFIFO(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.Start()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		reg.SubmitTask(func() any {
			order = append(order, i)
			return nil
		})
	}
	reg.RunTasks()

	if len(order) != 10 {
		t.Fatalf("ran %d tasks, want 10", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("task order %v is not FIFO", order)
		}
	}
}

func TestRunTasksPicksUpNestedTasks(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.Start()

	nested := false
	reg.SubmitTask(func() any {
		reg.SubmitTask(func() any {
			nested = true
			return nil
		})
		return nil
	})
	reg.RunTasks()
	if !nested {
		t.Error("a task queued by a running task should drain in the same cycle")
	}
}

func TestAtMostOnceExecution(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.Start()

	count := 0
	reg.SubmitTask(func() any {
		count++
		return nil
	})
	reg.RunTasks()
	reg.RunTasks()
	if count != 1 {
		t.Errorf("task ran %d times, want 1", count)
	}
}

func TestAdmissionCeiling(t *testing.T) {
	const limit = 3
	reg := NewRegistry(Options{MaxCallsPerFrame: limit})
	reg.Start()

	submit := func() (accepted, refused int) {
		for i := 0; i < limit+1; i++ {
			if res := reg.SubmitCallback(func() any { return nil }); res != nil {
				accepted++
			} else {
				refused++
			}
		}
		return
	}

	accepted, refused := submit()
	if accepted != limit || refused != 1 {
		t.Fatalf("first cycle: %d accepted, %d refused; want %d and 1", accepted, refused, limit)
	}

	// The drain resets the admission counter.
	reg.RunCallbacks()
	accepted, refused = submit()
	if accepted != limit || refused != 1 {
		t.Errorf("second cycle: %d accepted, %d refused; want %d and 1", accepted, refused, limit)
	}
}

func TestDefaultMaxCalls(t *testing.T) {
	reg := NewRegistry(Options{})
	if got := reg.MaxCallsPerFrame(); got != DefaultMaxCallsPerFrame {
		t.Errorf("default ceiling: got %d, want %d", got, DefaultMaxCallsPerFrame)
	}
}

func TestRunCallbacksReportsActivity(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.Start()

	if reg.RunCallbacks() {
		t.Error("empty drain should report false")
	}
	reg.SubmitCallback(func() any { return nil })
	if !reg.RunCallbacks() {
		t.Error("drain that ran a callback should report true")
	}
	if reg.RunCallbacks() {
		t.Error("subsequent empty drain should report false")
	}
}

func TestCallbackFIFO(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.Start()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		reg.SubmitCallback(func() any {
			order = append(order, i)
			return nil
		})
	}
	reg.RunCallbacks()
	for i, v := range order {
		if v != i {
			t.Fatalf("callback order %v is not FIFO", order)
		}
	}
}

func TestShutdownDiscardsQueuedWork(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.Start()

	ran := false
	reg.SubmitTask(func() any { ran = true; return nil })
	reg.SubmitCallback(func() any { ran = true; return nil })
	reg.Shutdown()

	reg.RunTasks()
	reg.RunCallbacks()
	if ran {
		t.Error("units queued before Shutdown must be discarded, not run")
	}
}

func TestShutdownReleasesHeldReferences(t *testing.T) {
	reg, retainer, _ := newTestRegistry(t, Options{})

	slotCb, slotUD := new(int), new(int)
	frameCb, frameUD := new(int), new(int)
	reg.Exit.Set(slotCb, slotUD)
	reg.ScheduleFrame(10, frameCb, frameUD)

	reg.Shutdown()
	reg.Shutdown() // idempotent

	for _, ref := range []any{slotCb, slotUD, frameCb, frameUD} {
		if n := retainer.net(ref); n != 0 {
			t.Errorf("reference %p: net count %d after Shutdown, want 0", ref, n)
		}
	}
}
