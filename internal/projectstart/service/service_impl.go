package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/renolink/renolink/internal/clock"
	commissiondomain "github.com/renolink/renolink/internal/commission/domain"
	"github.com/renolink/renolink/internal/config"
	contractordomain "github.com/renolink/renolink/internal/contractor/domain"
	"github.com/renolink/renolink/internal/notification"
	"github.com/renolink/renolink/internal/observability/metrics"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	"github.com/renolink/renolink/internal/projectstart/domain"
	quotedomain "github.com/renolink/renolink/internal/quote/domain"
)

// startableFrom lists the statuses a project may start from. Both are
// accepted because admins sometimes close bidding and start the work in
// one sitting without clicking through contractor-selected.
var startableFrom = []projectdomain.Status{
	projectdomain.StatusContractorSelected,
	projectdomain.StatusBiddingClosed,
}

type Params struct {
	fx.In

	Config         config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	GenID          *snowflake.Node
	ProjectRepo    projectdomain.Repository
	QuoteRepo      quotedomain.Repository
	ContractorRepo contractordomain.Repository
	CommissionRepo commissiondomain.Repository
	Notifier       notification.Service
	Metrics        *metrics.WorkflowMetrics `optional:"true"`
}

type Service struct {
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	genID          *snowflake.Node
	projectRepo    projectdomain.Repository
	quoteRepo      quotedomain.Repository
	contractorRepo contractordomain.Repository
	commissionRepo commissiondomain.Repository
	notifier       notification.Service
	metrics        *metrics.WorkflowMetrics
}

func New(p Params) domain.Service {
	return &Service{
		cfg:            p.Config,
		db:             p.DB,
		log:            p.Log.Named("projectstart.service"),
		clock:          p.Clock,
		genID:          p.GenID,
		projectRepo:    p.ProjectRepo,
		quoteRepo:      p.QuoteRepo,
		contractorRepo: p.ContractorRepo,
		commissionRepo: p.CommissionRepo,
		notifier:       p.Notifier,
		metrics:        p.Metrics,
	}
}

// Start performs the start workflow. The status flip is the only write
// that can fail the call; commission bookkeeping and notifications run
// after it and are isolated so a partial failure still leaves the
// project started.
func (s *Service) Start(ctx context.Context, rawID string) (domain.StartResult, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.StartResult{}, projectdomain.ErrInvalidID
	}

	project, err := s.projectRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.StartResult{}, err
	}
	if project == nil {
		return domain.StartResult{}, projectdomain.ErrNotFound
	}

	if project.IsStarted() {
		return s.alreadyStarted(ctx, project), nil
	}

	if !startable(project.Status) {
		return domain.StartResult{}, &projectdomain.InvalidTransitionError{
			From: project.Status,
			To:   projectdomain.StatusInProgress,
		}
	}
	if !project.HasSelection() {
		return domain.StartResult{}, domain.ErrMissingSelection
	}

	now := s.clock.Now()
	rows, err := s.markStarted(ctx, id, now)
	if err != nil {
		return domain.StartResult{}, err
	}
	if rows == 0 {
		// Lost the race. Re-read: a concurrent start is idempotent
		// success, anything else is a real conflict.
		current, err := s.projectRepo.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.StartResult{}, err
		}
		if current != nil && current.IsStarted() {
			return s.alreadyStarted(ctx, current), nil
		}
		return domain.StartResult{}, projectdomain.ErrStatusConflict
	}

	project.Status = projectdomain.StatusInProgress
	project.ProjectStartedAt = &now
	s.metrics.RecordProjectStarted()
	s.log.Info("project started",
		zap.String("project_id", id.String()),
		zap.Time("started_at", now),
	)

	// Everything below is best-effort.
	contractor, quote := s.loadSelection(ctx, project)
	commission := s.recordCommission(ctx, project, contractor, quote)
	s.sendStartedNotifications(ctx, project, contractor, quote)

	return domain.StartResult{
		Started:       true,
		ProjectStatus: project.Status,
		StartedAt:     project.ProjectStartedAt,
		Commission:    commission,
	}, nil
}

func (s *Service) Status(ctx context.Context, rawID string) (domain.StartStatus, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.StartStatus{}, projectdomain.ErrInvalidID
	}

	project, err := s.projectRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.StartStatus{}, err
	}
	if project == nil {
		return domain.StartStatus{}, projectdomain.ErrNotFound
	}

	return domain.StartStatus{
		ProjectID:     id.String(),
		ProjectStatus: project.Status,
		Started:       project.IsStarted(),
		StartedAt:     project.ProjectStartedAt,
		Completed:     project.ProjectCompletedAt != nil,
		CompletedAt:   project.ProjectCompletedAt,
		Commission:    s.commissionOutcome(ctx, id),
	}, nil
}

// markStarted runs the compare-and-swap under its own deadline so a
// slow database cannot hold the request open indefinitely.
func (s *Service) markStarted(ctx context.Context, id snowflake.ID, now time.Time) (int64, error) {
	timeout := time.Duration(s.cfg.StartWriteTimeoutMS) * time.Millisecond
	writeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := s.projectRepo.MarkStarted(writeCtx, s.db, id, startableFrom, now)
	if err != nil {
		if writeCtx.Err() == context.DeadlineExceeded {
			s.log.Error("start write timed out",
				zap.String("project_id", id.String()),
				zap.Duration("timeout", timeout),
			)
			return 0, domain.ErrTimeout
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return rows, nil
}

func (s *Service) alreadyStarted(ctx context.Context, project *projectdomain.Project) domain.StartResult {
	return domain.StartResult{
		Started:       false,
		ProjectStatus: project.Status,
		StartedAt:     project.ProjectStartedAt,
		Commission:    s.commissionOutcome(ctx, project.ID),
	}
}

func (s *Service) commissionOutcome(ctx context.Context, projectID snowflake.ID) *domain.CommissionOutcome {
	record, err := s.commissionRepo.FindByProjectID(ctx, s.db, projectID)
	if err != nil || record == nil {
		return nil
	}
	return &domain.CommissionOutcome{Created: true, CommissionID: record.ID.String()}
}

// loadSelection resolves the selected contractor and quote. The quote
// is looked up by its recorded id first, then by the project/contractor
// pair for rows whose selected_quote_id linkage went stale.
func (s *Service) loadSelection(ctx context.Context, project *projectdomain.Project) (*contractordomain.Contractor, *quotedomain.Quote) {
	var contractor *contractordomain.Contractor
	if project.SelectedContractorID != nil {
		loaded, err := s.contractorRepo.FindByID(ctx, s.db, *project.SelectedContractorID)
		if err != nil {
			s.log.Warn("selected contractor lookup failed",
				zap.String("project_id", project.ID.String()),
				zap.Error(err),
			)
		}
		contractor = loaded
	}

	var quote *quotedomain.Quote
	if project.SelectedQuoteID != nil {
		loaded, err := s.quoteRepo.FindByID(ctx, s.db, *project.SelectedQuoteID)
		if err != nil {
			s.log.Warn("selected quote lookup failed",
				zap.String("project_id", project.ID.String()),
				zap.Error(err),
			)
		}
		quote = loaded
	}
	if quote == nil && project.SelectedContractorID != nil {
		loaded, err := s.quoteRepo.FindByProjectAndContractor(ctx, s.db, project.ID, *project.SelectedContractorID)
		if err != nil {
			s.log.Warn("fallback quote lookup failed",
				zap.String("project_id", project.ID.String()),
				zap.Error(err),
			)
		}
		quote = loaded
	}

	return contractor, quote
}

// recordCommission creates the commission record for a freshly started
// project. Any failure alerts the admin mailbox so the record can be
// entered manually; it never unwinds the start.
func (s *Service) recordCommission(ctx context.Context, project *projectdomain.Project, contractor *contractordomain.Contractor, quote *quotedomain.Quote) *domain.CommissionOutcome {
	if contractor == nil {
		return s.commissionFailed(ctx, project, fmt.Errorf("selected contractor not found"))
	}
	if quote == nil {
		return s.commissionFailed(ctx, project, fmt.Errorf("selected quote not found"))
	}
	if quote.Price <= 0 {
		return s.commissionFailed(ctx, project, fmt.Errorf("selected quote has non-positive price %v", quote.Price))
	}

	if existing, err := s.commissionRepo.FindByProjectID(ctx, s.db, project.ID); err == nil && existing != nil {
		return &domain.CommissionOutcome{Created: false, CommissionID: existing.ID.String()}
	}

	now := s.clock.Now()
	record := commissiondomain.CommissionRecord{
		ID:               s.genID.Generate(),
		QuoteRequestID:   project.ID,
		ContractorID:     quote.ContractorID,
		ContractorName:   contractor.CompanyName,
		ProjectTitle:     project.SpaceType + " - " + project.FullAddress,
		QuoteAmount:      quote.Price,
		CommissionRate:   commissiondomain.RateFor(quote.Price),
		CommissionAmount: commissiondomain.AmountFor(quote.Price),
		Status:           commissiondomain.CommissionPending,
		StartedAt:        derefTime(project.ProjectStartedAt, now),
		MarkedManually:   false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.commissionRepo.Insert(ctx, s.db, &record); err != nil {
		if err == commissiondomain.ErrAlreadyExists {
			// A concurrent writer got there first; the record exists,
			// which is all we wanted.
			if existing, ferr := s.commissionRepo.FindByProjectID(ctx, s.db, project.ID); ferr == nil && existing != nil {
				return &domain.CommissionOutcome{Created: false, CommissionID: existing.ID.String()}
			}
			return &domain.CommissionOutcome{Created: false}
		}
		return s.commissionFailed(ctx, project, err)
	}

	s.log.Info("commission recorded",
		zap.String("project_id", project.ID.String()),
		zap.Float64("quote_amount", record.QuoteAmount),
		zap.Float64("commission_rate", record.CommissionRate),
		zap.Float64("commission_amount", record.CommissionAmount),
	)
	return &domain.CommissionOutcome{Created: true, CommissionID: record.ID.String()}
}

func (s *Service) commissionFailed(ctx context.Context, project *projectdomain.Project, cause error) *domain.CommissionOutcome {
	s.metrics.RecordCommissionFailure()
	s.log.Error("commission bookkeeping failed",
		zap.String("project_id", project.ID.String()),
		zap.Error(cause),
	)

	if err := s.notifier.CommissionFailure(ctx, project, cause); err != nil {
		s.log.Error("commission failure alert not sent",
			zap.String("project_id", project.ID.String()),
			zap.Error(err),
		)
	}

	return &domain.CommissionOutcome{Created: false, Error: cause.Error()}
}

func (s *Service) sendStartedNotifications(ctx context.Context, project *projectdomain.Project, contractor *contractordomain.Contractor, quote *quotedomain.Quote) {
	if err := s.notifier.ProjectStartedCustomer(ctx, project, contractor, quote); err != nil {
		s.log.Warn("customer start notification failed",
			zap.String("project_id", project.ID.String()),
			zap.Error(err),
		)
	}

	if contractor == nil {
		s.log.Warn("contractor start notification skipped, contractor not loaded",
			zap.String("project_id", project.ID.String()),
		)
		return
	}
	if err := s.notifier.ProjectStartedContractor(ctx, project, contractor, quote); err != nil {
		s.log.Warn("contractor start notification failed",
			zap.String("project_id", project.ID.String()),
			zap.Error(err),
		)
	}
}

func startable(status projectdomain.Status) bool {
	for _, allowed := range startableFrom {
		if status == allowed {
			return true
		}
	}
	return false
}

func derefTime(t *time.Time, fallback time.Time) time.Time {
	if t != nil {
		return *t
	}
	return fallback
}
