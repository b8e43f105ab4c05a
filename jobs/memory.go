package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Memory is a mutex-guarded in-process Store. Jobs vanish with the process.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]Job)}
}

func (m *Memory) Create(_ context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (m *Memory) SetProcessing(_ context.Context, id string) error {
	return m.update(id, func(job *Job) {
		job.Status = StatusProcessing
	})
}

func (m *Memory) Complete(_ context.Context, id string, result json.RawMessage) error {
	return m.update(id, func(job *Job) {
		now := time.Now().UTC()
		job.Status = StatusCompleted
		job.Result = result
		job.CompletedAt = &now
	})
}

func (m *Memory) Fail(_ context.Context, id string, message string) error {
	return m.update(id, func(job *Job) {
		now := time.Now().UTC()
		job.Status = StatusFailed
		job.Error = message
		job.CompletedAt = &now
	})
}

func (m *Memory) Result(_ context.Context, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if job.Status != StatusCompleted {
		return nil, ErrNotReady
	}
	return job.Result, nil
}

func (m *Memory) update(id string, mutate func(*Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	mutate(&job)
	m.jobs[id] = job
	return nil
}
