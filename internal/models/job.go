package models

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job statuses.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job represents an async save against a Connection API (a staged PATCH).
type Job struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`     // "senders-staged", "receivers-staged"
	Resource   string     `json:"resource"` // resource type
	ResourceID string     `json:"resource_id"`
	Status     string     `json:"status"` // "running", "completed", "failed"
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Output     []string   `json:"output"`
	mu         sync.Mutex
}

// AppendLog adds a log line to the job output.
func (j *Job) AppendLog(line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Output = append(j.Output, line)
}

// LogsSince returns log lines starting from the given index.
func (j *Job) LogsSince(offset int) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if offset >= len(j.Output) {
		return nil
	}
	lines := make([]string, len(j.Output)-offset)
	copy(lines, j.Output[offset:])
	return lines
}

// State returns the job status and error under the lock.
func (j *Job) State() (status, errMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status, j.Error
}

// Done reports whether the job has finished, successfully or not.
func (j *Job) Done() bool {
	status, _ := j.State()
	return status == JobCompleted || status == JobFailed
}

// Snapshot returns a copy safe to serialize while the job is running.
func (j *Job) Snapshot() *Job {
	j.mu.Lock()
	defer j.mu.Unlock()
	cp := &Job{
		ID:         j.ID,
		Type:       j.Type,
		Resource:   j.Resource,
		ResourceID: j.ResourceID,
		Status:     j.Status,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Error:      j.Error,
		Output:     make([]string, len(j.Output)),
	}
	copy(cp.Output, j.Output)
	return cp
}

// Complete marks the job as completed.
func (j *Job) Complete() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = JobCompleted
	now := time.Now()
	j.FinishedAt = &now
}

// Fail marks the job as failed with an error message.
func (j *Job) Fail(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = JobFailed
	j.Error = err
	now := time.Now()
	j.FinishedAt = &now
}

// JobStore is an in-memory thread-safe store for jobs.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create adds a new running job, assigning it a UUID.
func (s *JobStore) Create(jobType, resource, resourceID string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Resource:   resource,
		ResourceID: resourceID,
		Status:     JobRunning,
		StartedAt:  time.Now(),
		Output:     []string{},
	}
	s.jobs[j.ID] = j
	return j
}

// Get returns a job by ID.
func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// List returns snapshots of all jobs, most recent first.
func (s *JobStore) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, j.Snapshot())
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].StartedAt.After(result[b].StartedAt)
	})
	return result
}

// Prune drops finished jobs that ended more than maxAge ago and returns how
// many were removed. Running jobs are always kept.
func (s *JobStore) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, j := range s.jobs {
		j.mu.Lock()
		expired := j.FinishedAt != nil && j.FinishedAt.Before(cutoff)
		j.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
