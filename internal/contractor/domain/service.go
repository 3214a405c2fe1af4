package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("contractor_not_found")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidCompany = errors.New("invalid_company_name")
	ErrInvalidContact = errors.New("invalid_contact_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrUserExists     = errors.New("contractor_exists_for_user")
)

type CreateContractorRequest struct {
	UserID      string
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Specialties []string
}

type GetContractorRequest struct {
	ID string
}

type ListContractorRequest struct {
	Status    string
	Specialty string
}

type ListContractorResponse struct {
	Contractors []Contractor `json:"contractors"`
}

type Service interface {
	Create(context.Context, CreateContractorRequest) (Contractor, error)
	GetByID(context.Context, GetContractorRequest) (Contractor, error)
	List(context.Context, ListContractorRequest) (ListContractorResponse, error)
}
