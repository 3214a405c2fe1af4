package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/clock"
	"github.com/renolink/renolink/internal/commission/domain"
	contractordomain "github.com/renolink/renolink/internal/contractor/domain"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	quotedomain "github.com/renolink/renolink/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	GenID          *snowflake.Node
	Repo           domain.Repository
	ProjectRepo    projectdomain.Repository
	QuoteRepo      quotedomain.Repository
	ContractorRepo contractordomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	genID          *snowflake.Node
	repo           domain.Repository
	projectRepo    projectdomain.Repository
	quoteRepo      quotedomain.Repository
	contractorRepo contractordomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("commission.service"),
		clock:          p.Clock,
		genID:          p.GenID,
		repo:           p.Repo,
		projectRepo:    p.ProjectRepo,
		quoteRepo:      p.QuoteRepo,
		contractorRepo: p.ContractorRepo,
	}
}

func (s *Service) ManualCreate(ctx context.Context, req domain.ManualCreateRequest) (domain.CommissionRecord, error) {
	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil || projectID == 0 {
		return domain.CommissionRecord{}, domain.ErrInvalidProject
	}
	quoteID, err := snowflake.ParseString(strings.TrimSpace(req.QuoteID))
	if err != nil || quoteID == 0 {
		return domain.CommissionRecord{}, domain.ErrInvalidQuote
	}
	if req.StartedAt.IsZero() {
		return domain.CommissionRecord{}, domain.ErrInvalidStart
	}

	project, err := s.projectRepo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.CommissionRecord{}, err
	}
	if project == nil {
		return domain.CommissionRecord{}, projectdomain.ErrNotFound
	}
	if project.SelectedQuoteID == nil || *project.SelectedQuoteID == 0 {
		return domain.CommissionRecord{}, domain.ErrNoSelection
	}

	quote, err := s.quoteRepo.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return domain.CommissionRecord{}, err
	}
	if quote == nil {
		return domain.CommissionRecord{}, quotedomain.ErrNotFound
	}
	if quote.ProjectID != projectID {
		return domain.CommissionRecord{}, quotedomain.ErrQuoteMismatch
	}
	if quote.Price <= 0 {
		return domain.CommissionRecord{}, quotedomain.ErrInvalidPrice
	}

	contractorName := ""
	if contractor, err := s.contractorRepo.FindByID(ctx, s.db, quote.ContractorID); err == nil && contractor != nil {
		contractorName = contractor.CompanyName
	}

	// The form pre-filters projects that already have a record, but a
	// second admin session may have raced us; check-then-insert and
	// let the unique index settle it.
	if existing, err := s.repo.FindByProjectID(ctx, s.db, projectID); err != nil {
		return domain.CommissionRecord{}, err
	} else if existing != nil {
		return domain.CommissionRecord{}, domain.ErrAlreadyExists
	}

	now := s.clock.Now()
	record := domain.CommissionRecord{
		ID:               s.genID.Generate(),
		QuoteRequestID:   projectID,
		ContractorID:     quote.ContractorID,
		ContractorName:   contractorName,
		ProjectTitle:     projectTitle(project),
		QuoteAmount:      quote.Price,
		CommissionRate:   domain.RateFor(quote.Price),
		CommissionAmount: domain.AmountFor(quote.Price),
		Status:           domain.CommissionPending,
		StartedAt:        req.StartedAt.UTC(),
		MarkedManually:   true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		record.Notes = &notes
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return domain.CommissionRecord{}, err
	}

	s.log.Info("commission recorded manually",
		zap.String("project_id", projectID.String()),
		zap.Float64("quote_amount", record.QuoteAmount),
		zap.Float64("commission_amount", record.CommissionAmount),
	)

	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCommissionRequest) (domain.ListCommissionResponse, error) {
	var status domain.CommissionStatus
	if raw := strings.ToLower(strings.TrimSpace(req.Status)); raw != "" {
		switch domain.CommissionStatus(raw) {
		case domain.CommissionPending, domain.CommissionReceived:
			status = domain.CommissionStatus(raw)
		default:
			return domain.ListCommissionResponse{}, domain.ErrInvalidStatus
		}
	}

	items, err := s.repo.List(ctx, s.db, status)
	if err != nil {
		return domain.ListCommissionResponse{}, err
	}

	records := make([]domain.CommissionRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}
	return domain.ListCommissionResponse{Records: records}, nil
}

func (s *Service) SetStatus(ctx context.Context, req domain.SetStatusRequest) (domain.CommissionRecord, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.CommissionRecord{}, domain.ErrInvalidID
	}

	status := domain.CommissionStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != domain.CommissionPending && status != domain.CommissionReceived {
		return domain.CommissionRecord{}, domain.ErrInvalidStatus
	}

	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CommissionRecord{}, err
	}
	if record == nil {
		return domain.CommissionRecord{}, domain.ErrNotFound
	}

	now := s.clock.Now()
	var receivedAt *time.Time
	if status == domain.CommissionReceived {
		receivedAt = &now
	}

	rows, err := s.repo.SetStatus(ctx, s.db, id, status, receivedAt, now)
	if err != nil {
		return domain.CommissionRecord{}, err
	}
	if rows == 0 {
		return domain.CommissionRecord{}, domain.ErrNotFound
	}

	record.Status = status
	record.PaymentReceivedAt = receivedAt
	record.UpdatedAt = now
	return *record, nil
}

func (s *Service) EligibleProjects(ctx context.Context) ([]domain.EligibleProject, error) {
	var rows []struct {
		ProjectID    snowflake.ID
		SpaceType    string
		FullAddress  string
		ContractorID snowflake.ID
		QuoteID      snowflake.ID
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT qr.id AS project_id,
		        qr.space_type AS space_type,
		        qr.full_address AS full_address,
		        qr.selected_contractor_id AS contractor_id,
		        qr.selected_quote_id AS quote_id
		 FROM quote_requests qr
		 LEFT JOIN commission_tracking ct ON ct.quote_request_id = qr.id
		 WHERE qr.selected_quote_id IS NOT NULL AND ct.id IS NULL
		 ORDER BY qr.created_at DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	projects := make([]domain.EligibleProject, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, domain.EligibleProject{
			ProjectID:    row.ProjectID.String(),
			ProjectTitle: row.SpaceType + " - " + row.FullAddress,
			ContractorID: row.ContractorID.String(),
			QuoteID:      row.QuoteID.String(),
		})
	}
	return projects, nil
}

func projectTitle(project *projectdomain.Project) string {
	return project.SpaceType + " - " + project.FullAddress
}
