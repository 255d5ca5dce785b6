// Package bg runs background jobs for the lifetime of an application.
package bg

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/stairlin/relay/log"
)

// ErrDrain is the error returned when a new job attempts to be started during
// and the registry is draining
var ErrDrain = errors.New("registry is draining")

// ErrDup is the error returned when a new job has already been registered
var ErrDup = errors.New("job has already been registered")

// Job is a an interface to implement to be a background job
//
// Start blocks until the job is done, and Stop asks a running job to
// return from Start.
type Job interface {
	Start()
	Stop()
}

// Reg (registry) holds a list of running jobs
type Reg struct {
	mu sync.Mutex
	wg sync.WaitGroup

	drain bool
	log   log.Logger
	jobs  map[Job]*status
}

// NewReg builds a new registry
func NewReg(l log.Logger) *Reg {
	return &Reg{
		log:  l,
		jobs: map[Job]*status{},
	}
}

// Dispatch registers the given job and runs it in background
func (r *Reg) Dispatch(j Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Do not accept new jobs when the registry is draining
	if r.drain {
		return ErrDrain
	}

	// Ensure that it has not been already accepted
	if _, ok := r.jobs[j]; ok {
		return ErrDup
	}

	// Add it to registry
	s := r.register(j)

	r.wg.Add(1)
	go func() {
		// Deregister itself upon completion
		defer func() {
			r.mu.Lock()
			r.deregister(j)
			r.mu.Unlock()
			r.wg.Done()
		}()

		// Start job
		r.log.Trace("bg.job.start", "Start job", log.Type("job", j))
		close(s.started)
		j.Start()
	}()

	return nil
}

// Len returns the number of running jobs
func (r *Reg) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Drain sends a Stop() signal to all registered jobs, rejects new jobs and
// waits until all of them have returned
func (r *Reg) Drain() {
	// Check if we are already draining
	r.mu.Lock()
	if r.drain {
		r.mu.Unlock()
		return
	}
	r.drain = true

	jobs := make(map[Job]*status, len(r.jobs))
	for j, s := range r.jobs {
		jobs[j] = s
	}

	// Release lock
	r.mu.Unlock()

	// Start draining jobs
	r.log.Trace("bg.drain", "Draining registry", log.Int("jobs", len(jobs)))
	for j, s := range jobs {
		go func(j Job, s *status) {
			// Wait for job to be started
			<-s.started

			// Stop job
			r.log.Trace("bg.job.stop", "Stop job", log.Type("job", j))
			j.Stop()
		}(j, s)
	}

	r.wg.Wait()
	r.log.Trace("bg.drain.done", "Registry drained")
}

func (r *Reg) register(j Job) *status {
	s := &status{
		started: make(chan struct{}),
	}
	r.jobs[j] = s
	return s
}

func (r *Reg) deregister(j Job) {
	delete(r.jobs, j)
}

type status struct {
	started chan struct{}
}
