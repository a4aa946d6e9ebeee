package dispatch

// Job is a callback invocation recorded for manual handling. When the
// registry runs with ManualCallbackManagement, handle invocations are
// staged as Jobs instead of being auto-run on the call channel; the
// embedder pulls them with TakeJobs and runs each through RunJob on a
// thread of its choosing.
//
// A Job carries one reference to its Callback, UserData, and AppData
// fields. RunJob releases them; a Job that is taken but never run must be
// handed back to ReleaseJob.
type Job struct {
	Sender   uint64
	Callback any
	AppData  any
	UserData any

	res *Result
}

// StageJob appends job to the staging area, taking ownership of the
// references the job carries. Safe to call from any goroutine.
func (r *Registry) StageJob(job Job) {
	r.jobMu.Lock()
	r.jobs.Add(job)
	r.jobMu.Unlock()
}

// TakeJobs removes and returns all staged jobs in staging order.
// Ownership of each job's references passes to the caller.
func (r *Registry) TakeJobs() []Job {
	r.jobMu.Lock()
	defer r.jobMu.Unlock()
	if r.jobs.Length() == 0 {
		return nil
	}
	taken := make([]Job, 0, r.jobs.Length())
	for r.jobs.Length() > 0 {
		taken = append(taken, r.jobs.Remove().(Job))
	}
	return taken
}

// StagedJobs reports how many jobs are currently staged.
func (r *Registry) StagedJobs() int {
	r.jobMu.Lock()
	defer r.jobMu.Unlock()
	return r.jobs.Length()
}

// RunJob invokes a taken job, releases the references it carried, and
// completes its deferred result.
func (r *Registry) RunJob(job Job) {
	r.invoke(job.Callback, job.Sender, job.AppData, job.UserData)
	r.releaseJobRefs(job)
	if job.res != nil {
		job.res.complete(nil)
	}
}

// ReleaseJob discards a taken job without running it, releasing the
// references it carried. Its deferred result never completes.
func (r *Registry) ReleaseJob(job Job) {
	r.releaseJobRefs(job)
}

func (r *Registry) releaseJobRefs(job Job) {
	r.release(job.Callback)
	r.release(job.UserData)
	r.release(job.AppData)
}
