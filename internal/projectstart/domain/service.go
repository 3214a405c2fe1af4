package domain

import (
	"context"
	"errors"
	"time"

	projectdomain "github.com/renolink/renolink/internal/project/domain"
)

var (
	// ErrMissingSelection means the project reached a startable status
	// without both the contractor and quote references recorded.
	ErrMissingSelection = errors.New("missing_selection")

	// ErrPersistence means the start write itself failed; the project
	// was not transitioned.
	ErrPersistence = errors.New("project_start_persistence")

	// ErrTimeout means the start write exceeded its deadline. The write
	// may or may not have committed; callers should retry and rely on
	// idempotence.
	ErrTimeout = errors.New("project_start_timeout")
)

// CommissionOutcome reports what happened to the commission record
// during a start. A failed outcome never fails the start itself.
type CommissionOutcome struct {
	Created      bool   `json:"created"`
	CommissionID string `json:"commission_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// StartResult is the outcome of a start call. Started is false when the
// project had already been started and the call was a no-op.
type StartResult struct {
	Started       bool
	ProjectStatus projectdomain.Status
	StartedAt     *time.Time
	Commission    *CommissionOutcome
}

// StartStatus is the read-side view of a project's start state.
type StartStatus struct {
	ProjectID     string
	ProjectStatus projectdomain.Status
	Started       bool
	StartedAt     *time.Time
	Completed     bool
	CompletedAt   *time.Time
	Commission    *CommissionOutcome
}

type Service interface {
	// Start transitions the project to in-progress exactly once.
	// Repeat calls for a started project succeed with Started=false.
	Start(ctx context.Context, projectID string) (StartResult, error)

	// Status reports whether the project has started and whether its
	// commission record exists.
	Status(ctx context.Context, projectID string) (StartStatus, error)
}
