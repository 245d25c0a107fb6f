package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatAppendList(t *testing.T) {
	db := testDB(t)
	store := NewChatStore(db, testLogger())
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	turns := []*models.ChatMessage{
		{UserID: "alice", Role: models.RoleAssistantTurn, Text: "Hi, what are you investing for?", CreatedAt: base},
		{UserID: "alice", Role: models.RoleUserTurn, Text: "Retirement, mostly.", CreatedAt: base.Add(time.Second)},
		{UserID: "alice", Role: models.RoleAssistantTurn, Text: "What's your risk tolerance?", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, turn := range turns {
		require.NoError(t, store.Append(ctx, turn))
		assert.NotEmpty(t, turn.ID, "Append should assign an ID")
	}

	got, err := store.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Hi, what are you investing for?", got[0].Text)
	assert.Equal(t, models.RoleUserTurn, got[1].Role)
	assert.Equal(t, "What's your risk tolerance?", got[2].Text)
}

func TestChatListEmpty(t *testing.T) {
	db := testDB(t)
	store := NewChatStore(db, testLogger())
	ctx := context.Background()

	got, err := store.List(ctx, "nobody", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChatThreadsScopedByPortfolio(t *testing.T) {
	db := testDB(t)
	store := NewChatStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &models.ChatMessage{UserID: "bob", Role: models.RoleUserTurn, Text: "general question"}))
	require.NoError(t, store.Append(ctx, &models.ChatMessage{UserID: "bob", PortfolioID: "pf1", Role: models.RoleUserTurn, Text: "about my portfolio"}))

	general, err := store.List(ctx, "bob", "")
	require.NoError(t, err)
	require.Len(t, general, 1)
	assert.Equal(t, "general question", general[0].Text)

	scoped, err := store.List(ctx, "bob", "pf1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "about my portfolio", scoped[0].Text)
}

func TestChatListIsolatedByUser(t *testing.T) {
	db := testDB(t)
	store := NewChatStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &models.ChatMessage{UserID: "carol", Role: models.RoleUserTurn, Text: "carol's turn"}))

	got, err := store.List(ctx, "dave", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChatMessageCarriesSuggestion(t *testing.T) {
	db := testDB(t)
	store := NewChatStore(db, testLogger())
	ctx := context.Background()

	msg := &models.ChatMessage{
		UserID:       "erin",
		Role:         models.RoleAssistantTurn,
		Text:         "Here's a portfolio idea.",
		SuggestionID: "sug-1",
		Suggestion: &models.PortfolioSuggestion{
			ID:            "sug-1",
			UserID:        "erin",
			RiskTolerance: models.RiskModerate,
			Allocations: []models.Allocation{
				{Ticker: "VTI", AllocationPct: 60, AssetType: "etf"},
				{Ticker: "BND", AllocationPct: 40, AssetType: "etf"},
			},
		},
	}
	require.NoError(t, store.Append(ctx, msg))

	got, err := store.List(ctx, "erin", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sug-1", got[0].SuggestionID)
	require.NotNil(t, got[0].Suggestion)
	require.Len(t, got[0].Suggestion.Allocations, 2)
	assert.Equal(t, "VTI", got[0].Suggestion.Allocations[0].Ticker)
}
