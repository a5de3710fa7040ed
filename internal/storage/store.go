package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pillars/internal/chart"
	"pillars/internal/reaction"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

type JobStatus string

const (
	StatusPending  JobStatus = "pending"
	StatusFinished JobStatus = "finished"
	StatusFailed   JobStatus = "failed"
)

// Job is one queued chart. Payload is kept raw so that malformed input
// survives until the runner rejects it.
type Job struct {
	ID        int64
	Type      string
	Status    JobStatus
	Progress  int
	Payload   json.RawMessage
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Case is an analysed chart kept for later mining.
type Case struct {
	Key        string
	Chart      chart.Input
	Report     reaction.Report
	JobID      int64
	AnalyzedAt time.Time
}

// Store combines the work queue and the case store.
type Store interface {
	JobQueue
	CaseStore
	Close() error
}

// JobQueue defines the work-item table driving batch analysis.
type JobQueue interface {
	// Enqueue adds one pending job per payload and returns their IDs.
	Enqueue(ctx context.Context, jobType string, payloads []json.RawMessage) ([]int64, error)

	// Pending returns up to limit pending jobs of jobType, oldest first.
	Pending(ctx context.Context, jobType string, limit int) ([]Job, error)

	GetJob(ctx context.Context, id int64) (*Job, error)

	// Advance records progress on a job without changing its status.
	Advance(ctx context.Context, id int64, progress int) error

	MarkFinished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error

	// Reset moves jobs in the given statuses (finished and failed when none
	// are given) back to pending and clears progress and errors.
	Reset(ctx context.Context, jobType string, statuses ...JobStatus) (int64, error)

	// Counts returns the number of jobs of jobType per status.
	Counts(ctx context.Context, jobType string) (map[JobStatus]int, error)
}

// CaseStore persists analysed charts.
type CaseStore interface {
	// SaveCase upserts a case by key.
	SaveCase(ctx context.Context, c Case) error

	GetCase(ctx context.Context, key string) (*Case, error)

	// ListCases returns up to limit cases ordered by key.
	ListCases(ctx context.Context, limit int) ([]Case, error)
}
