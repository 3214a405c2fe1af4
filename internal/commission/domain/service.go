package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("commission_not_found")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidProject = errors.New("invalid_project")
	ErrInvalidQuote   = errors.New("invalid_quote")
	ErrInvalidStatus  = errors.New("invalid_commission_status")
	ErrInvalidStart   = errors.New("invalid_start_date")
	ErrAlreadyExists  = errors.New("commission_already_exists")
	ErrNoSelection    = errors.New("project_has_no_selected_quote")
)

type ManualCreateRequest struct {
	ProjectID string
	QuoteID   string
	StartedAt time.Time
	Notes     string
}

type ListCommissionRequest struct {
	Status string
}

type ListCommissionResponse struct {
	Records []CommissionRecord `json:"records"`
}

type SetStatusRequest struct {
	ID     string
	Status string
}

// EligibleProject is a project that has a selected quote but no
// commission record yet; the admin manual-entry form only offers these.
type EligibleProject struct {
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	ContractorID string `json:"contractor_id"`
	QuoteID      string `json:"quote_id"`
}

type Service interface {
	// ManualCreate is the admin entry path for projects whose owners
	// never pressed "start project". marked_manually is set and the
	// insert stays defensive against concurrent admin sessions.
	ManualCreate(context.Context, ManualCreateRequest) (CommissionRecord, error)

	List(context.Context, ListCommissionRequest) (ListCommissionResponse, error)
	SetStatus(context.Context, SetStatusRequest) (CommissionRecord, error)
	EligibleProjects(context.Context) ([]EligibleProject, error)
}
