package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/clock"
	"github.com/renolink/renolink/internal/contractor/domain"
	"github.com/renolink/renolink/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("contractor.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateContractorRequest) (domain.Contractor, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.Contractor{}, domain.ErrInvalidUser
	}
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		return domain.Contractor{}, domain.ErrInvalidCompany
	}
	contact := strings.TrimSpace(req.ContactName)
	if contact == "" {
		return domain.Contractor{}, domain.ErrInvalidContact
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Contractor{}, domain.ErrInvalidEmail
	}

	now := s.clock.Now()
	contractor := domain.Contractor{
		ID:          s.genID.Generate(),
		UserID:      userID,
		CompanyName: company,
		ContactName: contact,
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Specialties: datatypes.NewJSONSlice(req.Specialties),
		Status:      domain.ContractorActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &contractor); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Contractor{}, domain.ErrUserExists
		}
		return domain.Contractor{}, err
	}

	return contractor, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetContractorRequest) (domain.Contractor, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Contractor{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Contractor{}, err
	}
	if item == nil {
		return domain.Contractor{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListContractorRequest) (domain.ListContractorResponse, error) {
	filter := domain.ListContractorFilter{
		Specialty: strings.TrimSpace(req.Specialty),
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		filter.Status = domain.ContractorStatus(strings.ToLower(raw))
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListContractorResponse{}, err
	}

	contractors := make([]domain.Contractor, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		contractors = append(contractors, *item)
	}
	return domain.ListContractorResponse{Contractors: contractors}, nil
}
