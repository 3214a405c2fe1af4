package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/renolink/renolink/internal/clock"
	commissiondomain "github.com/renolink/renolink/internal/commission/domain"
	commissionrepo "github.com/renolink/renolink/internal/commission/repository"
	"github.com/renolink/renolink/internal/config"
	contractordomain "github.com/renolink/renolink/internal/contractor/domain"
	contractorrepo "github.com/renolink/renolink/internal/contractor/repository"
	"github.com/renolink/renolink/internal/notification"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	projectrepo "github.com/renolink/renolink/internal/project/repository"
	"github.com/renolink/renolink/internal/projectstart/domain"
	quotedomain "github.com/renolink/renolink/internal/quote/domain"
	quoterepo "github.com/renolink/renolink/internal/quote/repository"
	userdomain "github.com/renolink/renolink/internal/user/domain"
	userrepo "github.com/renolink/renolink/internal/user/repository"
	"github.com/renolink/renolink/pkg/db"
)

type sentEmail struct {
	To       []string
	Template string
	Data     map[string]interface{}
}

type fakeEmail struct {
	mu            sync.Mutex
	sent          []sentEmail
	failTemplates map[string]error
}

func (f *fakeEmail) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (f *fakeEmail) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTemplates[templateName]; ok {
		return err
	}
	f.sent = append(f.sent, sentEmail{To: to, Template: templateName, Data: data})
	return nil
}

func (f *fakeEmail) Templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.sent))
	for _, mail := range f.sent {
		names = append(names, mail.Template)
	}
	return names
}

type fixture struct {
	svc   domain.Service
	gdb   *gorm.DB
	node  *snowflake.Node
	clk   *clock.FakeClock
	email *fakeEmail
}

func setup(t *testing.T, email *fakeEmail) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&userdomain.User{},
		&contractordomain.Contractor{},
		&projectdomain.Project{},
		&quotedomain.Quote{},
		&commissiondomain.CommissionRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	cfg := config.Config{
		AdminEmail:          "ops@renolink.io",
		DefaultLocale:       "ko",
		StartWriteTimeoutMS: 5000,
	}

	notifier := notification.New(notification.Params{
		Config:   cfg,
		Log:      logger,
		Provider: email,
		Users:    userrepo.Provide(db.Elevated{DB: gdb}),
	})

	svc := New(Params{
		Config:         cfg,
		DB:             gdb,
		Log:            logger,
		Clock:          clk,
		GenID:          node,
		ProjectRepo:    projectrepo.Provide(),
		QuoteRepo:      quoterepo.Provide(),
		ContractorRepo: contractorrepo.Provide(),
		CommissionRepo: commissionrepo.Provide(),
		Notifier:       notifier,
	})

	return &fixture{svc: svc, gdb: gdb, node: node, clk: clk, email: email}
}

func (f *fixture) seedUser(t *testing.T, locale string) *userdomain.User {
	t.Helper()
	user := &userdomain.User{
		ID:        f.node.Generate(),
		Email:     fmt.Sprintf("user-%d@example.com", f.node.Generate()),
		Name:      "Test User",
		UserType:  "customer",
		Locale:    locale,
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	}
	require.NoError(t, f.gdb.Create(user).Error)
	return user
}

func (f *fixture) seedContractor(t *testing.T, userID snowflake.ID) *contractordomain.Contractor {
	t.Helper()
	contractor := &contractordomain.Contractor{
		ID:          f.node.Generate(),
		UserID:      userID,
		CompanyName: "Hanok Builders",
		ContactName: "Minsoo Park",
		Email:       "bids@hanokbuilders.example.com",
		Status:      contractordomain.ContractorActive,
		CreatedAt:   f.clk.Now(),
		UpdatedAt:   f.clk.Now(),
	}
	require.NoError(t, f.gdb.Create(contractor).Error)
	return contractor
}

func (f *fixture) seedProject(t *testing.T, customerID snowflake.ID, status projectdomain.Status) *projectdomain.Project {
	t.Helper()
	project := &projectdomain.Project{
		ID:          f.node.Generate(),
		CustomerID:  customerID,
		SpaceType:   "apartment",
		Budget:      "50000000-70000000",
		Timeline:    "3-months",
		FullAddress: "12 Yulgok-ro, Jongno-gu, Seoul",
		Status:      status,
		CreatedAt:   f.clk.Now(),
		UpdatedAt:   f.clk.Now(),
	}
	require.NoError(t, f.gdb.Create(project).Error)
	return project
}

func (f *fixture) seedQuote(t *testing.T, projectID, contractorID snowflake.ID, price float64) *quotedomain.Quote {
	t.Helper()
	quote := &quotedomain.Quote{
		ID:           f.node.Generate(),
		ProjectID:    projectID,
		ContractorID: contractorID,
		Price:        price,
		Status:       quotedomain.QuoteSubmitted,
		CreatedAt:    f.clk.Now(),
		UpdatedAt:    f.clk.Now(),
	}
	require.NoError(t, f.gdb.Create(quote).Error)
	return quote
}

func (f *fixture) selectQuote(t *testing.T, project *projectdomain.Project, contractorID, quoteID snowflake.ID) {
	t.Helper()
	require.NoError(t, f.gdb.Model(project).Updates(map[string]interface{}{
		"selected_contractor_id": contractorID,
		"selected_quote_id":      quoteID,
	}).Error)
}

func (f *fixture) commissionCount(t *testing.T, projectID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.gdb.Model(&commissiondomain.CommissionRecord{}).
		Where("quote_request_id = ?", projectID).Count(&count).Error)
	return count
}

func (f *fixture) reloadProject(t *testing.T, id snowflake.ID) *projectdomain.Project {
	t.Helper()
	var project projectdomain.Project
	require.NoError(t, f.gdb.Where("id = ?", id).Take(&project).Error)
	return &project
}

func TestStartProjectIdempotent(t *testing.T) {
	f := setup(t, &fakeEmail{})
	ctx := context.Background()

	customer := f.seedUser(t, "en")
	contractorUser := f.seedUser(t, "")
	contractor := f.seedContractor(t, contractorUser.ID)
	project := f.seedProject(t, customer.ID, projectdomain.StatusContractorSelected)
	quote := f.seedQuote(t, project.ID, contractor.ID, 75000)
	f.selectQuote(t, project, contractor.ID, quote.ID)

	first, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, first.Started)
	assert.Equal(t, projectdomain.StatusInProgress, first.ProjectStatus)
	require.NotNil(t, first.StartedAt)
	require.NotNil(t, first.Commission)
	assert.True(t, first.Commission.Created)
	assert.NotEmpty(t, first.Commission.CommissionID)
	assert.Equal(t, int64(1), f.commissionCount(t, project.ID))

	stored := f.reloadProject(t, project.ID)
	require.NotNil(t, stored.ProjectStartedAt)
	firstStartedAt := *stored.ProjectStartedAt

	f.clk.Advance(time.Hour)

	second, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.False(t, second.Started)
	assert.Equal(t, projectdomain.StatusInProgress, second.ProjectStatus)
	require.NotNil(t, second.Commission)
	assert.Equal(t, first.Commission.CommissionID, second.Commission.CommissionID)
	assert.Equal(t, int64(1), f.commissionCount(t, project.ID))

	stored = f.reloadProject(t, project.ID)
	require.NotNil(t, stored.ProjectStartedAt)
	assert.True(t, firstStartedAt.Equal(*stored.ProjectStartedAt))

	var record commissiondomain.CommissionRecord
	require.NoError(t, f.gdb.Where("quote_request_id = ?", project.ID).Take(&record).Error)
	assert.Equal(t, 75000.0, record.QuoteAmount)
	assert.Equal(t, 2.00, record.CommissionRate)
	assert.Equal(t, 1500.00, record.CommissionAmount)
	assert.False(t, record.MarkedManually)
	assert.Equal(t, commissiondomain.CommissionPending, record.Status)
}

func TestStartProjectLocalizedNotifications(t *testing.T) {
	mailer := &fakeEmail{}
	f := setup(t, mailer)
	ctx := context.Background()

	customer := f.seedUser(t, "en")
	contractorUser := f.seedUser(t, "fr") // unsupported, falls back to ko
	contractor := f.seedContractor(t, contractorUser.ID)
	project := f.seedProject(t, customer.ID, projectdomain.StatusContractorSelected)
	quote := f.seedQuote(t, project.ID, contractor.ID, 42000)
	f.selectQuote(t, project, contractor.ID, quote.ID)

	result, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Started)

	templates := mailer.Templates()
	assert.Contains(t, templates, "project_started_customer_en")
	assert.Contains(t, templates, "project_started_contractor_ko")
	assert.NotContains(t, templates, "commission_failure_admin")
}

func TestStartProjectRejectsIllegalState(t *testing.T) {
	f := setup(t, &fakeEmail{})
	ctx := context.Background()

	customer := f.seedUser(t, "")
	project := f.seedProject(t, customer.ID, projectdomain.StatusPending)

	_, err := f.svc.Start(ctx, project.ID.String())
	var transitionErr *projectdomain.InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, projectdomain.StatusPending, transitionErr.From)
	assert.Equal(t, projectdomain.StatusInProgress, transitionErr.To)

	stored := f.reloadProject(t, project.ID)
	assert.Equal(t, projectdomain.StatusPending, stored.Status)
	assert.Nil(t, stored.ProjectStartedAt)
	assert.Equal(t, int64(0), f.commissionCount(t, project.ID))
}

func TestStartProjectMissingSelection(t *testing.T) {
	f := setup(t, &fakeEmail{})
	ctx := context.Background()

	customer := f.seedUser(t, "")
	project := f.seedProject(t, customer.ID, projectdomain.StatusBiddingClosed)

	_, err := f.svc.Start(ctx, project.ID.String())
	assert.ErrorIs(t, err, domain.ErrMissingSelection)

	stored := f.reloadProject(t, project.ID)
	assert.Equal(t, projectdomain.StatusBiddingClosed, stored.Status)
	assert.Nil(t, stored.ProjectStartedAt)
	assert.Equal(t, int64(0), f.commissionCount(t, project.ID))
}

func TestStartProjectNotFound(t *testing.T) {
	f := setup(t, &fakeEmail{})
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, projectdomain.ErrNotFound)

	_, err = f.svc.Start(ctx, "not-a-number")
	assert.ErrorIs(t, err, projectdomain.ErrInvalidID)
}

func TestStartProjectCommissionFailureIsolated(t *testing.T) {
	mailer := &fakeEmail{}
	f := setup(t, mailer)
	ctx := context.Background()

	customer := f.seedUser(t, "ko")
	contractorUser := f.seedUser(t, "")
	contractor := f.seedContractor(t, contractorUser.ID)
	project := f.seedProject(t, customer.ID, projectdomain.StatusContractorSelected)
	// Selection points at a quote that no longer exists and no fallback
	// bid is on file, so commission inputs cannot be derived.
	f.selectQuote(t, project, contractor.ID, f.node.Generate())

	result, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Started)
	assert.Equal(t, projectdomain.StatusInProgress, result.ProjectStatus)
	require.NotNil(t, result.Commission)
	assert.False(t, result.Commission.Created)
	assert.NotEmpty(t, result.Commission.Error)
	assert.Equal(t, int64(0), f.commissionCount(t, project.ID))

	assert.Contains(t, mailer.Templates(), "commission_failure_admin")
}

func TestStartProjectMissingContractorFailsCommission(t *testing.T) {
	mailer := &fakeEmail{}
	f := setup(t, mailer)
	ctx := context.Background()

	customer := f.seedUser(t, "ko")
	project := f.seedProject(t, customer.ID, projectdomain.StatusContractorSelected)
	// The selected quote survives but its contractor row is gone, so the
	// commission inputs are incomplete even though a price is on file.
	ghostContractorID := f.node.Generate()
	quote := f.seedQuote(t, project.ID, ghostContractorID, 75000)
	f.selectQuote(t, project, ghostContractorID, quote.ID)

	result, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Started)
	assert.Equal(t, projectdomain.StatusInProgress, result.ProjectStatus)
	require.NotNil(t, result.Commission)
	assert.False(t, result.Commission.Created)
	assert.NotEmpty(t, result.Commission.Error)
	assert.Equal(t, int64(0), f.commissionCount(t, project.ID))

	assert.Contains(t, mailer.Templates(), "commission_failure_admin")
}

func TestStartProjectAdminAlertFailureInvisible(t *testing.T) {
	mailer := &fakeEmail{failTemplates: map[string]error{
		"commission_failure_admin": errors.New("smtp unavailable"),
	}}
	f := setup(t, mailer)
	ctx := context.Background()

	customer := f.seedUser(t, "")
	contractorUser := f.seedUser(t, "")
	contractor := f.seedContractor(t, contractorUser.ID)
	project := f.seedProject(t, customer.ID, projectdomain.StatusBiddingClosed)
	f.selectQuote(t, project, contractor.ID, f.node.Generate())

	result, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Started)
	require.NotNil(t, result.Commission)
	assert.False(t, result.Commission.Created)
}

func TestStartProjectDualPathQuoteLookup(t *testing.T) {
	f := setup(t, &fakeEmail{})
	ctx := context.Background()

	customer := f.seedUser(t, "")
	contractorUser := f.seedUser(t, "")
	contractor := f.seedContractor(t, contractorUser.ID)
	project := f.seedProject(t, customer.ID, projectdomain.StatusContractorSelected)
	quote := f.seedQuote(t, project.ID, contractor.ID, 120000)
	// Stale linkage: selected_quote_id points nowhere, but the bid is
	// still on file under (project, contractor).
	f.selectQuote(t, project, contractor.ID, f.node.Generate())

	result, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Started)
	require.NotNil(t, result.Commission)
	assert.True(t, result.Commission.Created)

	var record commissiondomain.CommissionRecord
	require.NoError(t, f.gdb.Where("quote_request_id = ?", project.ID).Take(&record).Error)
	assert.Equal(t, quote.Price, record.QuoteAmount)
	assert.Equal(t, 1.00, record.CommissionRate)
	assert.Equal(t, 1200.00, record.CommissionAmount)
}

func TestStartProjectRespectsExistingManualCommission(t *testing.T) {
	f := setup(t, &fakeEmail{})
	ctx := context.Background()

	customer := f.seedUser(t, "")
	contractorUser := f.seedUser(t, "")
	contractor := f.seedContractor(t, contractorUser.ID)
	project := f.seedProject(t, customer.ID, projectdomain.StatusContractorSelected)
	quote := f.seedQuote(t, project.ID, contractor.ID, 60000)
	f.selectQuote(t, project, contractor.ID, quote.ID)

	manual := &commissiondomain.CommissionRecord{
		ID:               f.node.Generate(),
		QuoteRequestID:   project.ID,
		ContractorID:     contractor.ID,
		QuoteAmount:      60000,
		CommissionRate:   2.00,
		CommissionAmount: 1200,
		Status:           commissiondomain.CommissionPending,
		StartedAt:        f.clk.Now(),
		MarkedManually:   true,
		CreatedAt:        f.clk.Now(),
		UpdatedAt:        f.clk.Now(),
	}
	require.NoError(t, f.gdb.Create(manual).Error)

	result, err := f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Started)
	require.NotNil(t, result.Commission)
	assert.False(t, result.Commission.Created)
	assert.Equal(t, manual.ID.String(), result.Commission.CommissionID)
	assert.Equal(t, int64(1), f.commissionCount(t, project.ID))
}

func TestStartStatusView(t *testing.T) {
	f := setup(t, &fakeEmail{})
	ctx := context.Background()

	customer := f.seedUser(t, "")
	contractorUser := f.seedUser(t, "")
	contractor := f.seedContractor(t, contractorUser.ID)
	project := f.seedProject(t, customer.ID, projectdomain.StatusContractorSelected)
	quote := f.seedQuote(t, project.ID, contractor.ID, 30000)
	f.selectQuote(t, project, contractor.ID, quote.ID)

	before, err := f.svc.Status(ctx, project.ID.String())
	require.NoError(t, err)
	assert.False(t, before.Started)
	assert.Nil(t, before.StartedAt)
	assert.Nil(t, before.Commission)

	_, err = f.svc.Start(ctx, project.ID.String())
	require.NoError(t, err)

	after, err := f.svc.Status(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, after.Started)
	assert.Equal(t, projectdomain.StatusInProgress, after.ProjectStatus)
	require.NotNil(t, after.StartedAt)
	assert.False(t, after.Completed)
	require.NotNil(t, after.Commission)
	assert.True(t, after.Commission.Created)
}
