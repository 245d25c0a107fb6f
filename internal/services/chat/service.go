// Package chat owns the conversation log and suggestion orchestration: it
// relays user turns to the AI engine, accumulates investor context along the
// way, and mints pending suggestions from engine replies.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type Service struct {
	storage  interfaces.StorageManager
	profiles interfaces.ProfileService
	engine   interfaces.GeminiClient
	logger   *common.Logger
}

func NewService(storage interfaces.StorageManager, profiles interfaces.ProfileService, engine interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		profiles: profiles,
		engine:   engine,
		logger:   logger,
	}
}

// InitIfEmpty appends the advisor greeting exactly once per user. The flip
// of first_chat_initiated is atomic in the store, so concurrent first page
// loads produce a single greeting. Losing callers get (nil, nil).
func (s *Service) InitIfEmpty(ctx context.Context, userID string) (*models.ChatMessage, error) {
	// Ensure the profile record exists before attempting the flip.
	if _, err := s.profiles.Get(ctx, userID); err != nil {
		return nil, err
	}

	won, err := s.storage.ProfileStore().TryInitChat(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, nil
	}

	msg := &models.ChatMessage{
		UserID:    userID,
		Role:      models.RoleAssistantTurn,
		Text:      greeting,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storage.ChatStore().Append(ctx, msg); err != nil {
		// Release the flag so the next init call can greet; otherwise the
		// user would never see a greeting.
		s.releaseInitFlag(ctx, userID)
		return nil, fmt.Errorf("failed to append greeting: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Chat initialized with greeting")
	return msg, nil
}

// releaseInitFlag best-effort flips first_chat_initiated back to false after
// a failed greeting append.
func (s *Service) releaseInitFlag(ctx context.Context, userID string) {
	profile, err := s.storage.ProfileStore().Get(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load profile while releasing init flag")
		return
	}
	profile.FirstChatInitiated = false
	if err := s.storage.ProfileStore().Save(ctx, profile); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to release init flag")
	}
}

func (s *Service) List(ctx context.Context, userID, portfolioID string) ([]*models.ChatMessage, error) {
	return s.storage.ChatStore().List(ctx, userID, portfolioID)
}

// Send persists the user's turn, enriches the profile from it, calls the
// engine, and persists the assistant's reply. The user turn is stored before
// the engine call, so an engine failure still leaves it in the log and the
// user can retry without retyping.
func (s *Service) Send(ctx context.Context, userID, portfolioID, text string) (*models.ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message text is required: %w", models.ErrValidation)
	}

	history, err := s.storage.ChatStore().List(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	userTurn := &models.ChatMessage{
		UserID:      userID,
		PortfolioID: portfolioID,
		Role:        models.RoleUserTurn,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.storage.ChatStore().Append(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("failed to append user turn: %w", err)
	}

	// Best-effort context accumulation; a failed merge never blocks the turn.
	if _, err := s.profiles.ExtractAndMerge(ctx, userID, text); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Context extraction failed")
	}

	contextBlock, err := s.profiles.PromptContext(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	if s.engine == nil {
		return nil, fmt.Errorf("no engine configured: %w", models.ErrEngineUnavailable)
	}

	prompt := buildPrompt(contextBlock, tailHistory(history), text)
	replyText, err := s.engine.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Suggestion engine call failed")
		return nil, fmt.Errorf("engine call failed: %w", models.ErrEngineUnavailable)
	}

	suggestion, narrative := parseSuggestion(replyText)
	if suggestion == nil && strings.Contains(replyText, "```") {
		s.logger.Warn().Str("user_id", userID).Msg("Engine reply contained an unusable suggestion block; rendering as text")
	}

	assistantTurn := &models.ChatMessage{
		UserID:      userID,
		PortfolioID: portfolioID,
		Role:        models.RoleAssistantTurn,
		Text:        narrative,
		CreatedAt:   time.Now().UTC(),
	}

	if suggestion != nil {
		suggestion.ID = uuid.NewString()
		suggestion.UserID = userID
		suggestion.PortfolioID = portfolioID
		suggestion.CreatedAt = time.Now().UTC()
		if err := s.storage.SuggestionStore().Save(ctx, suggestion); err != nil {
			return nil, fmt.Errorf("failed to save suggestion: %w", err)
		}
		assistantTurn.SuggestionID = suggestion.ID
		assistantTurn.Suggestion = suggestion
	}

	if err := s.storage.ChatStore().Append(ctx, assistantTurn); err != nil {
		return nil, fmt.Errorf("failed to append assistant turn: %w", err)
	}

	reply := &models.ChatReply{Message: assistantTurn}
	if suggestion != nil {
		reply.Suggestion = suggestion
		reply.SuggestionID = suggestion.ID
	}
	return reply, nil
}

// Reject discards a pending suggestion. Rejecting an already-consumed or
// unknown suggestion is a no-op, so double-clicks and retries are safe.
func (s *Service) Reject(ctx context.Context, userID, suggestionID string) error {
	if suggestionID == "" {
		return fmt.Errorf("suggestion id is required: %w", models.ErrValidation)
	}

	suggestion, err := s.storage.SuggestionStore().Consume(ctx, userID, suggestionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}

	// The follow-up lands in the thread the suggestion came from.
	followUp := &models.ChatMessage{
		UserID:      userID,
		PortfolioID: suggestion.PortfolioID,
		Role:        models.RoleAssistantTurn,
		Text:        "No problem, we can keep refining. What would you like to change about that suggestion?",
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.storage.ChatStore().Append(ctx, followUp); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to append rejection follow-up")
	}

	s.logger.Info().Str("user_id", userID).Str("suggestion_id", suggestionID).Msg("Suggestion rejected")
	return nil
}

var _ interfaces.ChatService = (*Service)(nil)
