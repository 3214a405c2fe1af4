package domain

import (
	"fmt"
	"strings"
)

// Status is the closed set of quote-request lifecycle states. All
// transition decisions go through the single table below; the admin
// project screen, the admin quote screen and the API consume the same
// table.
type Status string

const (
	StatusPending            Status = "pending"
	StatusApproved           Status = "approved"
	StatusSiteVisitPending   Status = "site-visit-pending"
	StatusSiteVisitCompleted Status = "site-visit-completed"
	StatusBidding            Status = "bidding"
	StatusQuoteSubmitted     Status = "quote-submitted"
	StatusBiddingClosed      Status = "bidding-closed"
	StatusContractorSelected Status = "contractor-selected"
	StatusInProgress         Status = "in-progress"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
)

// transitions is the forward lifecycle graph. Cancellation is reachable
// from every non-terminal state, and cancelled re-opens directly to
// approved (a product decision carried over from the admin screens, not
// a cleanup candidate).
var transitions = map[Status][]Status{
	StatusPending:            {StatusApproved, StatusCancelled},
	StatusApproved:           {StatusSiteVisitPending, StatusCancelled},
	StatusSiteVisitPending:   {StatusSiteVisitCompleted, StatusBidding, StatusCancelled},
	StatusSiteVisitCompleted: {StatusBidding, StatusCancelled},
	StatusBidding:            {StatusQuoteSubmitted, StatusBiddingClosed, StatusCancelled},
	StatusQuoteSubmitted:     {StatusBiddingClosed, StatusCancelled},
	StatusBiddingClosed:      {StatusContractorSelected, StatusInProgress, StatusCancelled},
	StatusContractorSelected: {StatusInProgress, StatusCancelled},
	StatusInProgress:         {StatusCompleted, StatusCancelled},
	StatusCompleted:          {},
	StatusCancelled:          {StatusApproved},
}

// NextStates returns the legal successor states for the given state.
// The returned slice must not be mutated.
func NextStates(current Status) []Status {
	return transitions[current]
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
// Cancelled is not terminal: it can be re-opened to approved.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// InvalidTransitionError reports an illegal transition attempt and
// carries the actual current state for diagnostics.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid_status_transition: %s -> %s", e.From, e.To)
}
