package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/clock"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	"github.com/renolink/renolink/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Repo        domain.Repository
	ProjectRepo projectdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        domain.Repository
	projectRepo projectdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("quote.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		projectRepo: p.ProjectRepo,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitQuoteRequest) (domain.Quote, error) {
	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil || projectID == 0 {
		return domain.Quote{}, domain.ErrInvalidProject
	}
	contractorID, err := snowflake.ParseString(strings.TrimSpace(req.ContractorID))
	if err != nil || contractorID == 0 {
		return domain.Quote{}, domain.ErrInvalidContractor
	}
	if req.Price <= 0 {
		return domain.Quote{}, domain.ErrInvalidPrice
	}

	project, err := s.projectRepo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.Quote{}, err
	}
	if project == nil {
		return domain.Quote{}, projectdomain.ErrNotFound
	}
	if project.Status != projectdomain.StatusBidding && project.Status != projectdomain.StatusQuoteSubmitted {
		return domain.Quote{}, &projectdomain.InvalidTransitionError{
			From: project.Status,
			To:   projectdomain.StatusQuoteSubmitted,
		}
	}

	if existing, err := s.repo.FindByProjectAndContractor(ctx, s.db, projectID, contractorID); err != nil {
		return domain.Quote{}, err
	} else if existing != nil {
		return domain.Quote{}, domain.ErrAlreadyQuoted
	}

	now := s.clock.Now()
	quote := domain.Quote{
		ID:           s.genID.Generate(),
		ProjectID:    projectID,
		ContractorID: contractorID,
		Price:        req.Price,
		Description:  strings.TrimSpace(req.Description),
		PDFURL:       strings.TrimSpace(req.PDFURL),
		Status:       domain.QuoteSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &quote); err != nil {
		return domain.Quote{}, err
	}

	// First bid flips the project to quote-submitted. A concurrent
	// first bid may win this write; losing it is harmless.
	if project.Status == projectdomain.StatusBidding {
		if _, err := s.projectRepo.UpdateStatus(ctx, s.db, projectID,
			projectdomain.StatusBidding, projectdomain.StatusQuoteSubmitted, now); err != nil {
			s.log.Warn("quote submitted but project status update failed",
				zap.String("project_id", projectID.String()),
				zap.Error(err),
			)
		}
	}

	return quote, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuoteRequest) (domain.ListQuoteResponse, error) {
	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil || projectID == 0 {
		return domain.ListQuoteResponse{}, domain.ErrInvalidProject
	}

	items, err := s.repo.ListByProject(ctx, s.db, projectID)
	if err != nil {
		return domain.ListQuoteResponse{}, err
	}

	quotes := make([]domain.Quote, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotes = append(quotes, *item)
	}
	return domain.ListQuoteResponse{Quotes: quotes}, nil
}

func (s *Service) Select(ctx context.Context, req domain.SelectQuoteRequest) (domain.Quote, error) {
	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil || projectID == 0 {
		return domain.Quote{}, domain.ErrInvalidProject
	}
	quoteID, err := snowflake.ParseString(strings.TrimSpace(req.QuoteID))
	if err != nil || quoteID == 0 {
		return domain.Quote{}, domain.ErrInvalidID
	}

	project, err := s.projectRepo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.Quote{}, err
	}
	if project == nil {
		return domain.Quote{}, projectdomain.ErrNotFound
	}
	if !projectdomain.CanTransition(project.Status, projectdomain.StatusContractorSelected) {
		return domain.Quote{}, &projectdomain.InvalidTransitionError{
			From: project.Status,
			To:   projectdomain.StatusContractorSelected,
		}
	}

	quote, err := s.repo.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	if quote.ProjectID != projectID {
		return domain.Quote{}, domain.ErrQuoteMismatch
	}

	now := s.clock.Now()
	rows, err := s.projectRepo.SetSelection(ctx, s.db, projectID, project.Status, quote.ContractorID, quote.ID, now)
	if err != nil {
		return domain.Quote{}, err
	}
	if rows == 0 {
		return domain.Quote{}, projectdomain.ErrStatusConflict
	}

	if err := s.repo.UpdateStatus(ctx, s.db, quote.ID, domain.QuoteSelected, now); err != nil {
		return domain.Quote{}, err
	}
	if err := s.repo.RejectOthers(ctx, s.db, projectID, quote.ID, now); err != nil {
		return domain.Quote{}, err
	}

	quote.Status = domain.QuoteSelected
	quote.UpdatedAt = now
	return *quote, nil
}
