package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/renolink/renolink/internal/clock"
	"github.com/renolink/renolink/internal/commission/domain"
	"github.com/renolink/renolink/internal/commission/repository"
	contractordomain "github.com/renolink/renolink/internal/contractor/domain"
	contractorrepo "github.com/renolink/renolink/internal/contractor/repository"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	projectrepo "github.com/renolink/renolink/internal/project/repository"
	quotedomain "github.com/renolink/renolink/internal/quote/domain"
	quoterepo "github.com/renolink/renolink/internal/quote/repository"
)

type fixture struct {
	svc  domain.Service
	gdb  *gorm.DB
	node *snowflake.Node
	clk  *clock.FakeClock
}

func setup(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&projectdomain.Project{},
		&contractordomain.Contractor{},
		&quotedomain.Quote{},
		&domain.CommissionRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:             gdb,
		Log:            zap.NewNop(),
		Clock:          clk,
		GenID:          node,
		Repo:           repository.Provide(),
		ProjectRepo:    projectrepo.Provide(),
		QuoteRepo:      quoterepo.Provide(),
		ContractorRepo: contractorrepo.Provide(),
	})
	return &fixture{svc: svc, gdb: gdb, node: node, clk: clk}
}

func (f *fixture) seedSelectedProject(t *testing.T, price float64) (*projectdomain.Project, *quotedomain.Quote) {
	t.Helper()

	contractor := &contractordomain.Contractor{
		ID:          f.node.Generate(),
		UserID:      f.node.Generate(),
		CompanyName: "Seoul Interiors",
		ContactName: "Jiyoung Kim",
		Email:       "quotes@seoulinteriors.example.com",
		Status:      contractordomain.ContractorActive,
	}
	require.NoError(t, f.gdb.Create(contractor).Error)

	project := &projectdomain.Project{
		ID:          f.node.Generate(),
		CustomerID:  f.node.Generate(),
		SpaceType:   "officetel",
		Budget:      "30000000-50000000",
		Timeline:    "2-months",
		FullAddress: "301 Dosan-daero, Gangnam-gu, Seoul",
		Status:      projectdomain.StatusContractorSelected,
	}
	require.NoError(t, f.gdb.Create(project).Error)

	quote := &quotedomain.Quote{
		ID:           f.node.Generate(),
		ProjectID:    project.ID,
		ContractorID: contractor.ID,
		Price:        price,
		Status:       quotedomain.QuoteSelected,
	}
	require.NoError(t, f.gdb.Create(quote).Error)

	require.NoError(t, f.gdb.Model(project).Updates(map[string]interface{}{
		"selected_contractor_id": contractor.ID,
		"selected_quote_id":      quote.ID,
	}).Error)
	project.SelectedContractorID = &contractor.ID
	project.SelectedQuoteID = &quote.ID

	return project, quote
}

func TestManualCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	project, quote := f.seedSelectedProject(t, 80000)
	startedAt := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	record, err := f.svc.ManualCreate(ctx, domain.ManualCreateRequest{
		ProjectID: project.ID.String(),
		QuoteID:   quote.ID.String(),
		StartedAt: startedAt,
		Notes:     "entered after phone confirmation",
	})
	require.NoError(t, err)
	assert.True(t, record.MarkedManually)
	assert.Equal(t, 80000.0, record.QuoteAmount)
	assert.Equal(t, 2.00, record.CommissionRate)
	assert.Equal(t, 1600.00, record.CommissionAmount)
	assert.Equal(t, domain.CommissionPending, record.Status)
	assert.True(t, record.StartedAt.Equal(startedAt))
	require.NotNil(t, record.Notes)
	assert.Equal(t, "entered after phone confirmation", *record.Notes)
	assert.Equal(t, "Seoul Interiors", record.ContractorName)
	assert.Equal(t, "officetel - 301 Dosan-daero, Gangnam-gu, Seoul", record.ProjectTitle)
}

func TestManualCreateDuplicateRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	project, quote := f.seedSelectedProject(t, 80000)
	req := domain.ManualCreateRequest{
		ProjectID: project.ID.String(),
		QuoteID:   quote.ID.String(),
		StartedAt: f.clk.Now(),
	}

	_, err := f.svc.ManualCreate(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.ManualCreate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	var count int64
	require.NoError(t, f.gdb.Model(&domain.CommissionRecord{}).
		Where("quote_request_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestManualCreateRequiresSelection(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, quote := f.seedSelectedProject(t, 80000)

	bare := &projectdomain.Project{
		ID:          f.node.Generate(),
		CustomerID:  f.node.Generate(),
		SpaceType:   "villa",
		Budget:      "10000000-30000000",
		Timeline:    "1-month",
		FullAddress: "7 Seongsui-ro, Seongdong-gu, Seoul",
		Status:      projectdomain.StatusBiddingClosed,
	}
	require.NoError(t, f.gdb.Create(bare).Error)

	_, err := f.svc.ManualCreate(ctx, domain.ManualCreateRequest{
		ProjectID: bare.ID.String(),
		QuoteID:   quote.ID.String(),
		StartedAt: f.clk.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestManualCreateRejectsMismatchedQuote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	project, _ := f.seedSelectedProject(t, 80000)
	_, otherQuote := f.seedSelectedProject(t, 40000)

	_, err := f.svc.ManualCreate(ctx, domain.ManualCreateRequest{
		ProjectID: project.ID.String(),
		QuoteID:   otherQuote.ID.String(),
		StartedAt: f.clk.Now(),
	})
	assert.ErrorIs(t, err, quotedomain.ErrQuoteMismatch)
}

func TestSetStatusTogglesPaymentReceivedAt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	project, quote := f.seedSelectedProject(t, 120000)
	record, err := f.svc.ManualCreate(ctx, domain.ManualCreateRequest{
		ProjectID: project.ID.String(),
		QuoteID:   quote.ID.String(),
		StartedAt: f.clk.Now(),
	})
	require.NoError(t, err)

	f.clk.Advance(24 * time.Hour)
	received, err := f.svc.SetStatus(ctx, domain.SetStatusRequest{
		ID:     record.ID.String(),
		Status: "received",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionReceived, received.Status)
	require.NotNil(t, received.PaymentReceivedAt)

	back, err := f.svc.SetStatus(ctx, domain.SetStatusRequest{
		ID:     record.ID.String(),
		Status: "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionPending, back.Status)
	assert.Nil(t, back.PaymentReceivedAt)

	_, err = f.svc.SetStatus(ctx, domain.SetStatusRequest{
		ID:     record.ID.String(),
		Status: "paid",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestEligibleProjects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	withRecord, withQuote := f.seedSelectedProject(t, 90000)
	_, err := f.svc.ManualCreate(ctx, domain.ManualCreateRequest{
		ProjectID: withRecord.ID.String(),
		QuoteID:   withQuote.ID.String(),
		StartedAt: f.clk.Now(),
	})
	require.NoError(t, err)

	missing, _ := f.seedSelectedProject(t, 30000)

	projects, err := f.svc.EligibleProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, missing.ID.String(), projects[0].ProjectID)
}

func TestListFiltersByStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	project, quote := f.seedSelectedProject(t, 55000)
	record, err := f.svc.ManualCreate(ctx, domain.ManualCreateRequest{
		ProjectID: project.ID.String(),
		QuoteID:   quote.ID.String(),
		StartedAt: f.clk.Now(),
	})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, domain.ListCommissionRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, record.ID, resp.Records[0].ID)

	resp, err = f.svc.List(ctx, domain.ListCommissionRequest{Status: "received"})
	require.NoError(t, err)
	assert.Empty(t, resp.Records)

	_, err = f.svc.List(ctx, domain.ListCommissionRequest{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
