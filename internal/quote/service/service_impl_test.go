package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/renolink/renolink/internal/clock"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	projectrepo "github.com/renolink/renolink/internal/project/repository"
	"github.com/renolink/renolink/internal/quote/domain"
	"github.com/renolink/renolink/internal/quote/repository"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&projectdomain.Project{}, &domain.Quote{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:          gdb,
		Log:         zap.NewNop(),
		Clock:       clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		GenID:       node,
		Repo:        repository.Provide(),
		ProjectRepo: projectrepo.Provide(),
	})
	return svc, gdb, node
}

func seedProject(t *testing.T, gdb *gorm.DB, node *snowflake.Node, status projectdomain.Status) *projectdomain.Project {
	t.Helper()
	project := &projectdomain.Project{
		ID:          node.Generate(),
		CustomerID:  node.Generate(),
		SpaceType:   "house",
		Budget:      "70000000+",
		Timeline:    "6-months",
		FullAddress: "5 Bukchon-ro, Jongno-gu, Seoul",
		Status:      status,
	}
	require.NoError(t, gdb.Create(project).Error)
	return project
}

func TestSubmitFlipsBiddingToQuoteSubmitted(t *testing.T) {
	svc, gdb, node := setupService(t)
	ctx := context.Background()

	project := seedProject(t, gdb, node, projectdomain.StatusBidding)
	contractorID := node.Generate()

	quote, err := svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: contractorID.String(),
		Price:        45000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteSubmitted, quote.Status)

	var stored projectdomain.Project
	require.NoError(t, gdb.Where("id = ?", project.ID).Take(&stored).Error)
	assert.Equal(t, projectdomain.StatusQuoteSubmitted, stored.Status)

	// A second contractor can still bid; the project stays put.
	_, err = svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: node.Generate().String(),
		Price:        52000,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.Where("id = ?", project.ID).Take(&stored).Error)
	assert.Equal(t, projectdomain.StatusQuoteSubmitted, stored.Status)
}

func TestSubmitRejectsDuplicateBid(t *testing.T) {
	svc, gdb, node := setupService(t)
	ctx := context.Background()

	project := seedProject(t, gdb, node, projectdomain.StatusBidding)
	contractorID := node.Generate()

	_, err := svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: contractorID.String(),
		Price:        45000,
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: contractorID.String(),
		Price:        47000,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyQuoted)
}

func TestSubmitGuards(t *testing.T) {
	svc, gdb, node := setupService(t)
	ctx := context.Background()

	project := seedProject(t, gdb, node, projectdomain.StatusPending)

	_, err := svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: node.Generate().String(),
		Price:        45000,
	})
	var transitionErr *projectdomain.InvalidTransitionError
	assert.True(t, errors.As(err, &transitionErr))

	_, err = svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: node.Generate().String(),
		Price:        0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestSelectRecordsSelectionAndRejectsOthers(t *testing.T) {
	svc, gdb, node := setupService(t)
	ctx := context.Background()

	project := seedProject(t, gdb, node, projectdomain.StatusBidding)
	winner, err := svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: node.Generate().String(),
		Price:        61000,
	})
	require.NoError(t, err)
	loser, err := svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    project.ID.String(),
		ContractorID: node.Generate().String(),
		Price:        58000,
	})
	require.NoError(t, err)

	// Admin closes bidding before selecting.
	require.NoError(t, gdb.Model(&projectdomain.Project{}).
		Where("id = ?", project.ID).
		Update("status", projectdomain.StatusBiddingClosed).Error)

	selected, err := svc.Select(ctx, domain.SelectQuoteRequest{
		ProjectID: project.ID.String(),
		QuoteID:   winner.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteSelected, selected.Status)

	var stored projectdomain.Project
	require.NoError(t, gdb.Where("id = ?", project.ID).Take(&stored).Error)
	assert.Equal(t, projectdomain.StatusContractorSelected, stored.Status)
	require.NotNil(t, stored.SelectedQuoteID)
	assert.Equal(t, winner.ID, *stored.SelectedQuoteID)
	require.NotNil(t, stored.SelectedContractorID)
	assert.Equal(t, winner.ContractorID, *stored.SelectedContractorID)

	var rejected domain.Quote
	require.NoError(t, gdb.Where("id = ?", loser.ID).Take(&rejected).Error)
	assert.Equal(t, domain.QuoteRejected, rejected.Status)
}

func TestSelectRejectsMismatchedQuote(t *testing.T) {
	svc, gdb, node := setupService(t)
	ctx := context.Background()

	project := seedProject(t, gdb, node, projectdomain.StatusBidding)
	other := seedProject(t, gdb, node, projectdomain.StatusBidding)

	quote, err := svc.Submit(ctx, domain.SubmitQuoteRequest{
		ProjectID:    other.ID.String(),
		ContractorID: node.Generate().String(),
		Price:        33000,
	})
	require.NoError(t, err)

	require.NoError(t, gdb.Model(&projectdomain.Project{}).
		Where("id = ?", project.ID).
		Update("status", projectdomain.StatusBiddingClosed).Error)

	_, err = svc.Select(ctx, domain.SelectQuoteRequest{
		ProjectID: project.ID.String(),
		QuoteID:   quote.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrQuoteMismatch)
}
