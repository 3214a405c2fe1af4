package domain

import (
	"context"
	"errors"
	"time"

	"github.com/renolink/renolink/pkg/db/pagination"
)

var (
	ErrNotFound        = errors.New("project_not_found")
	ErrUnknownStatus   = errors.New("unknown_status")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidSpace    = errors.New("invalid_space_type")
	ErrInvalidBudget   = errors.New("invalid_budget")
	ErrInvalidTimeline = errors.New("invalid_timeline")
	ErrInvalidAddress  = errors.New("invalid_address")
	ErrInvalidID       = errors.New("invalid_id")
	ErrStatusConflict  = errors.New("status_conflict")
)

type CreateProjectRequest struct {
	CustomerID   string
	SpaceType    string
	ProjectTypes []string
	Budget       string
	Timeline     string
	FullAddress  string
	PostalCode   string
	Description  string
}

type GetProjectRequest struct {
	ID string
}

type ListProjectRequest struct {
	PageToken   string
	PageSize    int
	Status      string
	CustomerID  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListProjectResponse struct {
	pagination.PageInfo
	Projects []Project `json:"projects"`
}

type TransitionRequest struct {
	ID     string
	Target string
}

type Service interface {
	Create(context.Context, CreateProjectRequest) (Project, error)
	GetByID(context.Context, GetProjectRequest) (Project, error)
	List(context.Context, ListProjectRequest) (ListProjectResponse, error)

	// Transition re-reads the current status, validates the edge
	// against the shared table and performs a conditional write.
	Transition(context.Context, TransitionRequest) (Project, error)

	// CompleteSiteVisitAndOpenBidding finishes the site visit and
	// opens bidding as one atomic transition. The two admin screens
	// expose this as a single button.
	CompleteSiteVisitAndOpenBidding(ctx context.Context, id string) (Project, error)

	Cancel(ctx context.Context, id string) (Project, error)

	// Reactivate re-opens a cancelled project directly to approved.
	Reactivate(ctx context.Context, id string) (Project, error)

	// Complete marks an in-progress project completed and stamps
	// project_completed_at.
	Complete(ctx context.Context, id string) (Project, error)
}
