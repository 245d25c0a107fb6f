// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	InternalStore() InternalStore
	ProfileStore() ProfileStore
	ChatStore() ChatStore
	SuggestionStore() SuggestionStore
	PortfolioStore() PortfolioStore

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts, per-user config, and system-level KV.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	DeleteUserKV(ctx context.Context, userID, key string) error
	ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// ProfileStore manages the per-user investor profile record.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.InvestorProfile, error)
	Save(ctx context.Context, profile *models.InvestorProfile) error

	// TryInitChat atomically flips first_chat_initiated from false to true.
	// Returns true only for the single caller that won the flip; concurrent
	// first page loads must not both see true.
	TryInitChat(ctx context.Context, userID string) (bool, error)
}

// ChatStore persists the append-only conversation log.
type ChatStore interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	// List returns messages for (user, portfolio scope) in chronological order.
	// An empty portfolioID selects the global advisor conversation.
	List(ctx context.Context, userID, portfolioID string) ([]*models.ChatMessage, error)
}

// SuggestionStore holds ephemeral AI portfolio suggestions.
type SuggestionStore interface {
	Save(ctx context.Context, s *models.PortfolioSuggestion) error
	Get(ctx context.Context, userID, id string) (*models.PortfolioSuggestion, error)

	// Consume atomically deletes and returns the suggestion. A second Consume
	// for the same id returns models.ErrNotFound — this is the at-most-once
	// acceptance guarantee.
	Consume(ctx context.Context, userID, id string) (*models.PortfolioSuggestion, error)
}

// PortfolioStore persists durable portfolios.
type PortfolioStore interface {
	Save(ctx context.Context, p *models.Portfolio) error
	Get(ctx context.Context, userID, id string) (*models.Portfolio, error)
	List(ctx context.Context, userID string) ([]*models.Portfolio, error)
	Delete(ctx context.Context, userID, id string) error
}
