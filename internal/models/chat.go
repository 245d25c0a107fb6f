package models

import "time"

// ChatRole identifies who authored a chat turn.
type ChatRole string

const (
	RoleUserTurn      ChatRole = "user"
	RoleAssistantTurn ChatRole = "assistant"
)

// ChatMessage is one turn in a user's conversation. Append-only — messages
// are never mutated after creation. PortfolioID scopes the turn to a specific
// portfolio conversation; empty means the user's global advisor chat.
type ChatMessage struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	// PortfolioID is stored even when empty so the store can filter the
	// global thread with a plain equality match.
	PortfolioID  string               `json:"portfolio_id"`
	Role         ChatRole             `json:"role"`
	Text         string               `json:"text"`
	SuggestionID string               `json:"suggestion_id,omitempty"`
	Suggestion   *PortfolioSuggestion `json:"portfolio_suggestion,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ChatReply is the response to a send-message call: the stored assistant
// turn plus the minted suggestion, when the engine proposed one.
type ChatReply struct {
	Message      *ChatMessage         `json:"message"`
	Suggestion   *PortfolioSuggestion `json:"portfolio_suggestion,omitempty"`
	SuggestionID string               `json:"suggestion_id,omitempty"`
}
