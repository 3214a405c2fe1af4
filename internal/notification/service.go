package notification

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/renolink/renolink/internal/config"
	contractordomain "github.com/renolink/renolink/internal/contractor/domain"
	"github.com/renolink/renolink/internal/observability/metrics"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	"github.com/renolink/renolink/internal/providers/email"
	quotedomain "github.com/renolink/renolink/internal/quote/domain"
	userdomain "github.com/renolink/renolink/internal/user/domain"
)

// Service sends workflow notification emails. Every method is
// best-effort from the caller's point of view: errors are returned for
// logging and metrics but must never abort the surrounding workflow.
type Service interface {
	// ResolveLocale returns the user's stored locale preference,
	// falling back to the configured default when the user cannot be
	// loaded or has no supported locale set.
	ResolveLocale(ctx context.Context, userID snowflake.ID) string

	ProjectStartedCustomer(ctx context.Context, project *projectdomain.Project, contractor *contractordomain.Contractor, quote *quotedomain.Quote) error
	ProjectStartedContractor(ctx context.Context, project *projectdomain.Project, contractor *contractordomain.Contractor, quote *quotedomain.Quote) error

	// CommissionFailure alerts the admin address that a started
	// project has no commission record, including everything needed to
	// create it manually.
	CommissionFailure(ctx context.Context, project *projectdomain.Project, cause error) error
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Provider email.Provider
	Users    userdomain.Repository
	Metrics  *metrics.WorkflowMetrics `optional:"true"`
}

type service struct {
	cfg      config.Config
	log      *zap.Logger
	provider email.Provider
	users    userdomain.Repository
	metrics  *metrics.WorkflowMetrics
}

func New(p Params) Service {
	return &service{
		cfg:      p.Config,
		log:      p.Log.Named("notification.service"),
		provider: p.Provider,
		users:    p.Users,
		metrics:  p.Metrics,
	}
}

func (s *service) ResolveLocale(ctx context.Context, userID snowflake.ID) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		s.log.Warn("locale lookup failed, using default",
			zap.Int64("user_id", int64(userID)),
			zap.String("default_locale", s.cfg.DefaultLocale),
			zap.Error(err),
		)
		return s.cfg.DefaultLocale
	}

	switch strings.ToLower(strings.TrimSpace(user.Locale)) {
	case "ko":
		return "ko"
	case "en":
		return "en"
	default:
		return s.cfg.DefaultLocale
	}
}

func (s *service) ProjectStartedCustomer(ctx context.Context, project *projectdomain.Project, contractor *contractordomain.Contractor, quote *quotedomain.Quote) error {
	customer, err := s.users.FindByID(ctx, project.CustomerID)
	if err != nil || customer == nil {
		s.metrics.RecordNotification("project_started_customer", false)
		if err == nil {
			err = userdomain.ErrNotFound
		}
		return err
	}

	locale := s.ResolveLocale(ctx, project.CustomerID)
	data := map[string]interface{}{
		"subject":         startedSubject(locale),
		"customer_name":   customer.Name,
		"project_title":   projectTitle(project),
		"contractor_name": contractorName(contractor),
		"started_at":      startedAt(project),
	}

	err = s.provider.SendTemplate(ctx, []string{customer.Email}, "project_started_customer_"+locale, data)
	s.metrics.RecordNotification("project_started_customer", err == nil)
	return err
}

func (s *service) ProjectStartedContractor(ctx context.Context, project *projectdomain.Project, contractor *contractordomain.Contractor, quote *quotedomain.Quote) error {
	locale := s.ResolveLocale(ctx, contractor.UserID)
	data := map[string]interface{}{
		"subject":         startedSubject(locale),
		"contractor_name": contractorName(contractor),
		"project_title":   projectTitle(project),
		"started_at":      startedAt(project),
		"quote_amount":    quoteAmount(quote),
	}

	err := s.provider.SendTemplate(ctx, []string{contractor.Email}, "project_started_contractor_"+locale, data)
	s.metrics.RecordNotification("project_started_contractor", err == nil)
	return err
}

func (s *service) CommissionFailure(ctx context.Context, project *projectdomain.Project, cause error) error {
	data := map[string]interface{}{
		"subject":       "[RenoLink] Commission tracking failed: project " + project.ID.String(),
		"project_id":    project.ID.String(),
		"contractor_id": optionalID(project.SelectedContractorID),
		"quote_id":      optionalID(project.SelectedQuoteID),
		"error":         cause.Error(),
		"started_at":    startedAt(project),
	}

	err := s.provider.SendTemplate(ctx, []string{s.cfg.AdminEmail}, "commission_failure_admin", data)
	s.metrics.RecordNotification("commission_failure_admin", err == nil)
	return err
}

func startedSubject(locale string) string {
	if locale == "en" {
		return "Your RenoLink project has started"
	}
	return "RenoLink 프로젝트가 시작되었습니다"
}

func projectTitle(project *projectdomain.Project) string {
	return project.SpaceType + " - " + project.FullAddress
}

func contractorName(contractor *contractordomain.Contractor) string {
	if contractor == nil {
		return ""
	}
	if contractor.CompanyName != "" {
		return contractor.CompanyName
	}
	return contractor.ContactName
}

func startedAt(project *projectdomain.Project) string {
	if project.ProjectStartedAt == nil {
		return ""
	}
	return project.ProjectStartedAt.UTC().Format(time.RFC3339)
}

func quoteAmount(quote *quotedomain.Quote) string {
	if quote == nil {
		return ""
	}
	return strconv.FormatFloat(quote.Price, 'f', -1, 64)
}

func optionalID(id *snowflake.ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
