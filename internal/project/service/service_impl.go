package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/renolink/renolink/internal/clock"
	"github.com/renolink/renolink/internal/project/domain"
	"github.com/renolink/renolink/pkg/db/pagination"
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
		log:   p.Log.Named("project.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Project{}, domain.ErrInvalidCustomer
	}
	spaceType := strings.TrimSpace(req.SpaceType)
	if spaceType == "" {
		return domain.Project{}, domain.ErrInvalidSpace
	}
	budget := strings.TrimSpace(req.Budget)
	if budget == "" {
		return domain.Project{}, domain.ErrInvalidBudget
	}
	timeline := strings.TrimSpace(req.Timeline)
	if timeline == "" {
		return domain.Project{}, domain.ErrInvalidTimeline
	}
	address := strings.TrimSpace(req.FullAddress)
	if address == "" {
		return domain.Project{}, domain.ErrInvalidAddress
	}

	now := s.clock.Now()
	project := domain.Project{
		ID:           s.genID.Generate(),
		CustomerID:   customerID,
		SpaceType:    spaceType,
		ProjectTypes: datatypes.NewJSONSlice(req.ProjectTypes),
		Budget:       budget,
		Timeline:     timeline,
		FullAddress:  address,
		PostalCode:   strings.TrimSpace(req.PostalCode),
		Description:  strings.TrimSpace(req.Description),
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}

	return project, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetProjectRequest) (domain.Project, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Project{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Project{}, err
	}
	if item == nil {
		return domain.Project{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProjectRequest) (domain.ListProjectResponse, error) {
	filter := domain.ListProjectFilter{
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return domain.ListProjectResponse{}, err
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListProjectResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListProjectResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(project *domain.Project) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        project.ID.String(),
			CreatedAt: project.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	projects := make([]domain.Project, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		projects = append(projects, *item)
	}

	resp := domain.ListProjectResponse{Projects: projects}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Transition(ctx context.Context, req domain.TransitionRequest) (domain.Project, error) {
	target, err := domain.ParseStatus(req.Target)
	if err != nil {
		return domain.Project{}, err
	}
	return s.transition(ctx, req.ID, target, nil)
}

func (s *Service) CompleteSiteVisitAndOpenBidding(ctx context.Context, id string) (domain.Project, error) {
	// Finishing the visit and opening bidding is one admin action; the
	// intermediate site-visit-completed state is never persisted here.
	return s.transition(ctx, id, domain.StatusBidding, []domain.Status{
		domain.StatusSiteVisitPending,
		domain.StatusSiteVisitCompleted,
	})
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Project, error) {
	return s.transition(ctx, id, domain.StatusCancelled, nil)
}

func (s *Service) Reactivate(ctx context.Context, id string) (domain.Project, error) {
	return s.transition(ctx, id, domain.StatusApproved, []domain.Status{domain.StatusCancelled})
}

func (s *Service) Complete(ctx context.Context, id string) (domain.Project, error) {
	projectID, err := s.parseID(id)
	if err != nil {
		return domain.Project{}, err
	}

	project, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrNotFound
	}
	if !domain.CanTransition(project.Status, domain.StatusCompleted) {
		return domain.Project{}, &domain.InvalidTransitionError{From: project.Status, To: domain.StatusCompleted}
	}

	rows, err := s.repo.MarkCompleted(ctx, s.db, projectID, s.clock.Now())
	if err != nil {
		return domain.Project{}, err
	}
	if rows == 0 {
		return domain.Project{}, domain.ErrStatusConflict
	}

	return s.reload(ctx, projectID)
}

// transition re-reads the current status, validates the edge and writes
// conditionally on the status it read. A concurrent admin losing the
// race gets ErrStatusConflict instead of silently clobbering.
func (s *Service) transition(ctx context.Context, id string, target domain.Status, allowedFrom []domain.Status) (domain.Project, error) {
	projectID, err := s.parseID(id)
	if err != nil {
		return domain.Project{}, err
	}

	project, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrNotFound
	}

	if allowedFrom != nil {
		ok := false
		for _, from := range allowedFrom {
			if project.Status == from {
				ok = true
				break
			}
		}
		if !ok {
			return domain.Project{}, &domain.InvalidTransitionError{From: project.Status, To: target}
		}
	} else if !domain.CanTransition(project.Status, target) {
		return domain.Project{}, &domain.InvalidTransitionError{From: project.Status, To: target}
	}

	rows, err := s.repo.UpdateStatus(ctx, s.db, projectID, project.Status, target, s.clock.Now())
	if err != nil {
		return domain.Project{}, err
	}
	if rows == 0 {
		return domain.Project{}, domain.ErrStatusConflict
	}

	s.log.Info("project status transition",
		zap.String("project_id", projectID.String()),
		zap.String("from", string(project.Status)),
		zap.String("to", string(target)),
	)

	return s.reload(ctx, projectID)
}

func (s *Service) reload(ctx context.Context, id snowflake.ID) (domain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrNotFound
	}
	return *project, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
