package surrealdb

import (
	"context"
	"testing"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSuggestion(userID, id string) *models.PortfolioSuggestion {
	return &models.PortfolioSuggestion{
		ID:              id,
		UserID:          userID,
		RiskTolerance:   models.RiskModerate,
		ROIExpectations: 7,
		Allocations: []models.Allocation{
			{Ticker: "AAPL", AllocationPct: 40, AssetType: "stock", Sector: "technology"},
			{Ticker: "BND", AllocationPct: 60, AssetType: "etf"},
		},
		Rationale: "Balanced growth and income.",
	}
}

func TestSuggestionSaveGet(t *testing.T) {
	db := testDB(t)
	store := NewSuggestionStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSuggestion("alice", "sug-1")))

	got, err := store.Get(ctx, "alice", "sug-1")
	require.NoError(t, err)
	assert.Equal(t, "sug-1", got.ID)
	require.Len(t, got.Allocations, 2)
	assert.Equal(t, 40.0, got.Allocations[0].AllocationPct)
}

func TestSuggestionGetWrongUser(t *testing.T) {
	db := testDB(t)
	store := NewSuggestionStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSuggestion("alice", "sug-2")))

	_, err := store.Get(ctx, "mallory", "sug-2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSuggestionConsumeOnce(t *testing.T) {
	db := testDB(t)
	store := NewSuggestionStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSuggestion("bob", "sug-3")))

	got, err := store.Consume(ctx, "bob", "sug-3")
	require.NoError(t, err)
	assert.Equal(t, "sug-3", got.ID)
	assert.Equal(t, "Balanced growth and income.", got.Rationale)

	// Second consume of the same ID must fail: the record is gone.
	_, err = store.Consume(ctx, "bob", "sug-3")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = store.Get(ctx, "bob", "sug-3")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSuggestionConsumeWrongUser(t *testing.T) {
	db := testDB(t)
	store := NewSuggestionStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSuggestion("carol", "sug-4")))

	_, err := store.Consume(ctx, "mallory", "sug-4")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Still there for the owner.
	got, err := store.Consume(ctx, "carol", "sug-4")
	require.NoError(t, err)
	assert.Equal(t, "sug-4", got.ID)
}
