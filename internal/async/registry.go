package async

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
)

// DefaultRegistryCapacity bounds how many jobs are remembered.
const DefaultRegistryCapacity = 1024

// Status is the externally visible state of a job. It is also the webhook
// payload.
type Status struct {
	JobID       uuid.UUID           `json:"job_id"`
	Status      constants.JobStatus `json:"status"`
	Source      string              `json:"source,omitempty"`
	SubmittedAt time.Time           `json:"submitted_at"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	Results     []pipeline.Result   `json:"results,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Registry keeps job statuses in memory. Once capacity is exceeded the
// oldest finished jobs are forgotten; queued and running jobs are kept.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	jobs     map[uuid.UUID]*Status
	order    []uuid.UUID
	now      func() time.Time
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultRegistryCapacity
	}
	return &Registry{
		capacity: capacity,
		jobs:     make(map[uuid.UUID]*Status),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *Registry) Add(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submitted := job.SubmittedAt
	if submitted.IsZero() {
		submitted = r.now()
	}
	if _, ok := r.jobs[job.ID]; !ok {
		r.order = append(r.order, job.ID)
	}
	r.jobs[job.ID] = &Status{
		JobID:       job.ID,
		Status:      constants.JobStatusQueued,
		Source:      job.Source,
		SubmittedAt: submitted,
	}
	r.evict()
}

func (r *Registry) Start(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.jobs[id]; ok {
		t := r.now()
		s.StartedAt = &t
		s.Status = constants.JobStatusRunning
	}
}

// Finish records the outcome and returns a copy of the final status.
func (r *Registry) Finish(id uuid.UUID, results []pipeline.Result, err error) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.jobs[id]
	if !ok {
		s = &Status{JobID: id}
		r.jobs[id] = s
		r.order = append(r.order, id)
	}
	t := r.now()
	s.FinishedAt = &t
	if err != nil {
		s.Status = constants.JobStatusFailed
		s.Error = common.PublicMessage(err)
	} else {
		s.Status = constants.JobStatusDone
		s.Results = results
	}
	out := *s
	r.evict()
	return out
}

func (r *Registry) Get(id uuid.UUID) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.jobs[id]
	if !ok {
		return Status{}, false
	}
	return *s, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// evict drops the oldest terminal jobs while over capacity. Callers hold mu.
func (r *Registry) evict() {
	if len(r.jobs) <= r.capacity {
		return
	}
	kept := r.order[:0]
	for _, id := range r.order {
		s := r.jobs[id]
		if len(r.jobs) > r.capacity && s.Status.Terminal() {
			delete(r.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}
