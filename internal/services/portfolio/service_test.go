package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	tcommon "github.com/bobmcallan/folio/tests/common"
)

func newTestService() (*Service, *tcommon.MockStorageManager) {
	storage := tcommon.NewMockStorageManager()
	return NewService(storage, common.NewSilentLogger()), storage
}

func seedSuggestion(t *testing.T, storage *tcommon.MockStorageManager, userID, id string) {
	t.Helper()
	require.NoError(t, storage.SuggestionStore().Save(context.Background(), &models.PortfolioSuggestion{
		ID:              id,
		UserID:          userID,
		RiskTolerance:   models.RiskModerate,
		ROIExpectations: 7,
		Allocations: []models.Allocation{
			{Ticker: "AAPL", AllocationPct: 40, AssetType: "stock", Sector: "technology"},
			{Ticker: "BND", AllocationPct: 60, AssetType: "etf"},
		},
		Rationale: "Growth with a bond cushion.",
	}))
}

func TestAcceptCreatesPortfolio(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()
	seedSuggestion(t, storage, "alice", "sug-1")

	portfolio, err := svc.Accept(ctx, "alice", "sug-1", "Retirement", "Retirement planning")
	require.NoError(t, err)
	assert.Equal(t, models.PortfolioTypeAI, portfolio.Type)
	assert.Equal(t, "Retirement", portfolio.Name)
	assert.Equal(t, models.RiskModerate, portfolio.RiskTolerance)
	require.Len(t, portfolio.Allocations, 2)
	assert.Equal(t, "AAPL", portfolio.Allocations[0].Ticker)
	assert.Equal(t, 40.0, portfolio.Allocations[0].AllocationPct)

	// Durable and retrievable.
	got, err := svc.Get(ctx, "alice", portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, "Retirement", got.Name)

	// The suggestion is consumed.
	_, err = storage.SuggestionStore().Get(ctx, "alice", "sug-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAcceptTwiceCreatesOnePortfolio(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()
	seedSuggestion(t, storage, "bob", "sug-2")

	_, err := svc.Accept(ctx, "bob", "sug-2", "First", "")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "bob", "sug-2", "Second", "")
	assert.ErrorIs(t, err, models.ErrNotFound)

	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()
	seedSuggestion(t, storage, "carla", "sug-race")

	const callers = 16
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Accept(ctx, "carla", "sug-race", fmt.Sprintf("Racer %d", n), "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, models.ErrNotFound)
		}
	}
	assert.Equal(t, 1, wins, "exactly one accept consumes the suggestion")

	list, err := svc.List(ctx, "carla")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAcceptDefaultsName(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()
	seedSuggestion(t, storage, "carol", "sug-3")

	portfolio, err := svc.Accept(ctx, "carol", "sug-3", "  ", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(portfolio.Name, "AI Portfolio"))
}

func TestCreateManualPortfolio(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	portfolio, err := svc.Create(ctx, "dave", interfaces.CreatePortfolioInput{
		Name:          "Index mix",
		Goal:          "General investing",
		RiskTolerance: models.RiskConservative,
		Allocations: []models.Allocation{
			{Ticker: "VT", AllocationPct: 100, AssetType: "etf"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PortfolioTypeManual, portfolio.Type)
	assert.NotEmpty(t, portfolio.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input interfaces.CreatePortfolioInput
	}{
		{"missing name", interfaces.CreatePortfolioInput{
			Allocations: []models.Allocation{{Ticker: "VT", AllocationPct: 100}},
		}},
		{"sum under tolerance", interfaces.CreatePortfolioInput{
			Name:        "Under",
			Allocations: []models.Allocation{{Ticker: "VT", AllocationPct: 95}},
		}},
		{"sum over tolerance", interfaces.CreatePortfolioInput{
			Name:        "Over",
			Allocations: []models.Allocation{{Ticker: "VT", AllocationPct: 105}},
		}},
		{"no allocations", interfaces.CreatePortfolioInput{Name: "Empty"}},
		{"bad risk", interfaces.CreatePortfolioInput{
			Name:          "Risky",
			RiskTolerance: "extreme",
			Allocations:   []models.Allocation{{Ticker: "VT", AllocationPct: 100}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "erin", tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCreateWithinTolerance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// 99.95 is inside the ±0.1 band around 100.
	_, err := svc.Create(ctx, "frank", interfaces.CreatePortfolioInput{
		Name: "Close enough",
		Allocations: []models.Allocation{
			{Ticker: "VTI", AllocationPct: 59.95},
			{Ticker: "BND", AllocationPct: 40},
		},
	})
	require.NoError(t, err)
}

func TestUpdateAllocations(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	portfolio, err := svc.Create(ctx, "gina", interfaces.CreatePortfolioInput{
		Name:        "Adjustable",
		Allocations: []models.Allocation{{Ticker: "VT", AllocationPct: 100}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateAllocations(ctx, "gina", portfolio.ID, []models.Allocation{
		{Ticker: "VTI", AllocationPct: 70},
		{Ticker: "BND", AllocationPct: 30},
	})
	require.NoError(t, err)
	require.Len(t, updated.Allocations, 2)

	_, err = svc.UpdateAllocations(ctx, "gina", portfolio.ID, []models.Allocation{
		{Ticker: "VTI", AllocationPct: 80},
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestInvestProRata(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	portfolio, err := svc.Create(ctx, "henry", interfaces.CreatePortfolioInput{
		Name: "Funded",
		Allocations: []models.Allocation{
			{Ticker: "VTI", AllocationPct: 70},
			{Ticker: "BND", AllocationPct: 30},
		},
	})
	require.NoError(t, err)

	invested, err := svc.Invest(ctx, "henry", portfolio.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, invested.TotalInvested)
	require.Len(t, invested.Holdings, 2)

	byTicker := map[string]float64{}
	for _, h := range invested.Holdings {
		byTicker[h.Ticker] = h.Invested
	}
	assert.InDelta(t, 700, byTicker["VTI"], 0.001)
	assert.InDelta(t, 300, byTicker["BND"], 0.001)

	// Second contribution tops up the same holdings.
	invested, err = svc.Invest(ctx, "henry", portfolio.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, invested.TotalInvested)
	assert.Len(t, invested.Holdings, 2)
}

func TestInvestValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Invest(ctx, "iris", "missing", 100)
	assert.ErrorIs(t, err, models.ErrNotFound)

	portfolio, err := svc.Create(ctx, "iris", interfaces.CreatePortfolioInput{
		Name:        "Guarded",
		Allocations: []models.Allocation{{Ticker: "VT", AllocationPct: 100}},
	})
	require.NoError(t, err)

	_, err = svc.Invest(ctx, "iris", portfolio.ID, 0)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.Invest(ctx, "iris", portfolio.ID, -50)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteRequiresNameConfirmation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	portfolio, err := svc.Create(ctx, "jack", interfaces.CreatePortfolioInput{
		Name:        "Keep safe",
		Allocations: []models.Allocation{{Ticker: "VT", AllocationPct: 100}},
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, "jack", portfolio.ID, "wrong name")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Get(ctx, "jack", portfolio.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "jack", portfolio.ID, "Keep safe"))

	_, err = svc.Get(ctx, "jack", portfolio.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExportCSV(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	portfolio, err := svc.Create(ctx, "kate", interfaces.CreatePortfolioInput{
		Name: "Exported",
		Allocations: []models.Allocation{
			{Ticker: "VTI", AllocationPct: 70, AssetType: "etf", Sector: "broad market"},
			{Ticker: "BND", AllocationPct: 30, AssetType: "etf"},
		},
	})
	require.NoError(t, err)
	_, err = svc.Invest(ctx, "kate", portfolio.ID, 1000)
	require.NoError(t, err)

	data, err := svc.ExportCSV(ctx, "kate", portfolio.ID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ticker,allocation_percentage,asset_type,sector,invested", lines[0])
	assert.Equal(t, "VTI,70.00,etf,broad market,700.00", lines[1])
	assert.Equal(t, "BND,30.00,etf,,300.00", lines[2])
}

func TestExportJSON(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	portfolio, err := svc.Create(ctx, "liam", interfaces.CreatePortfolioInput{
		Name:        "Serialized",
		Allocations: []models.Allocation{{Ticker: "VT", AllocationPct: 100, AssetType: "etf"}},
	})
	require.NoError(t, err)

	data, err := svc.ExportJSON(ctx, "liam", portfolio.ID)
	require.NoError(t, err)

	var decoded models.Portfolio
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, portfolio.ID, decoded.ID)
	assert.Equal(t, "Serialized", decoded.Name)
	require.Len(t, decoded.Allocations, 1)
}

func TestRenderAllocationChart(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	portfolio, err := svc.Create(ctx, "mia", interfaces.CreatePortfolioInput{
		Name: "Charted",
		Allocations: []models.Allocation{
			{Ticker: "VTI", AllocationPct: 70},
			{Ticker: "BND", AllocationPct: 30},
		},
	})
	require.NoError(t, err)

	png, err := svc.RenderAllocationChart(ctx, "mia", portfolio.ID)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, png[:4])
}
