// Package jobs tracks asynchronous analysis jobs through their lifecycle.
// The Store interface is the seam between the in-memory map used by tests
// and single-process deployments and the sqlite store used when jobs must
// outlive one process.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var (
	// ErrNotFound means no job exists under the given id.
	ErrNotFound = errors.New("jobs: not found")

	// ErrNotReady means the job exists but has no readable result: it is
	// still pending/processing, or it failed. Failed jobs expose their
	// error through Get, never through Result.
	ErrNotReady = errors.New("jobs: result not ready")
)

// Job is the lifecycle record for one analysis run. Result is opaque JSON;
// the registry stores it, it does not interpret it.
type Job struct {
	ID          string          `json:"job_id"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      json.RawMessage `json:"-"`
	Error       string          `json:"error,omitempty"`
}

// Terminal reports whether the job can no longer change state.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Store is the job registry. Created/transitioned/finalized only by the
// orchestrator; read by status and result queries.
type Store interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
	SetProcessing(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, result json.RawMessage) error
	Fail(ctx context.Context, id string, message string) error
	Result(ctx context.Context, id string) (json.RawMessage, error)
}
