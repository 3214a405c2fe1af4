package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("quote_not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidProject    = errors.New("invalid_project")
	ErrInvalidContractor = errors.New("invalid_contractor")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrAlreadyQuoted     = errors.New("contractor_already_quoted")
	ErrQuoteMismatch     = errors.New("quote_project_mismatch")
)

type SubmitQuoteRequest struct {
	ProjectID    string
	ContractorID string
	Price        float64
	Description  string
	PDFURL       string
}

type ListQuoteRequest struct {
	ProjectID string
}

type ListQuoteResponse struct {
	Quotes []Quote `json:"quotes"`
}

type SelectQuoteRequest struct {
	ProjectID string
	QuoteID   string
}

type Service interface {
	// Submit records a contractor's bid. The project must be taking
	// bids; the first bid moves it from bidding to quote-submitted.
	Submit(context.Context, SubmitQuoteRequest) (Quote, error)

	List(context.Context, ListQuoteRequest) (ListQuoteResponse, error)

	// Select marks one quote selected, rejects the rest and advances
	// the project to contractor-selected with the selection recorded.
	Select(context.Context, SelectQuoteRequest) (Quote, error)
}
