package common

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// MockStorageManager is an in-memory StorageManager for unit tests that
// don't need a real SurrealDB container. All stores are safe for concurrent
// use and honor the same atomicity contracts as the SurrealDB stores.
type MockStorageManager struct {
	internal    *MockInternalStore
	profiles    *MockProfileStore
	chats       *MockChatStore
	suggestions *MockSuggestionStore
	portfolios  *MockPortfolioStore
}

func NewMockStorageManager() *MockStorageManager {
	return &MockStorageManager{
		internal:    &MockInternalStore{users: map[string]*models.InternalUser{}, userKV: map[string]*models.UserKeyValue{}, systemKV: map[string]string{}},
		profiles:    &MockProfileStore{profiles: map[string]*models.InvestorProfile{}},
		chats:       &MockChatStore{},
		suggestions: &MockSuggestionStore{suggestions: map[string]*models.PortfolioSuggestion{}},
		portfolios:  &MockPortfolioStore{portfolios: map[string]*models.Portfolio{}},
	}
}

func (m *MockStorageManager) InternalStore() interfaces.InternalStore       { return m.internal }
func (m *MockStorageManager) ProfileStore() interfaces.ProfileStore         { return m.profiles }
func (m *MockStorageManager) ChatStore() interfaces.ChatStore               { return m.chats }
func (m *MockStorageManager) SuggestionStore() interfaces.SuggestionStore   { return m.suggestions }
func (m *MockStorageManager) PortfolioStore() interfaces.PortfolioStore     { return m.portfolios }
func (m *MockStorageManager) Close() error                                  { return nil }

var _ interfaces.StorageManager = (*MockStorageManager)(nil)

// MockInternalStore keeps users and KV entries in maps.
type MockInternalStore struct {
	mu       sync.Mutex
	users    map[string]*models.InternalUser
	userKV   map[string]*models.UserKeyValue
	systemKV map[string]string
}

func (s *MockInternalStore) GetUser(ctx context.Context, userID string) (*models.InternalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
}

func (s *MockInternalStore) GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
}

func (s *MockInternalStore) SaveUser(ctx context.Context, user *models.InternalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.UserID] = &copied
	return nil
}

func (s *MockInternalStore) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *MockInternalStore) ListUsers(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MockInternalStore) GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kv, ok := s.userKV[userID+"_"+key]; ok {
		copied := *kv
		return &copied, nil
	}
	return nil, fmt.Errorf("user KV %s: %w", key, models.ErrNotFound)
}

func (s *MockInternalStore) SetUserKV(ctx context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userKV[userID+"_"+key] = &models.UserKeyValue{UserID: userID, Key: key, Value: value, DateTime: time.Now()}
	return nil
}

func (s *MockInternalStore) DeleteUserKV(ctx context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userKV, userID+"_"+key)
	return nil
}

func (s *MockInternalStore) ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kvs []*models.UserKeyValue
	for _, kv := range s.userKV {
		if kv.UserID == userID {
			copied := *kv
			kvs = append(kvs, &copied)
		}
	}
	return kvs, nil
}

func (s *MockInternalStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.systemKV[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("system KV %s: %w", key, models.ErrNotFound)
}

func (s *MockInternalStore) SetSystemKV(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemKV[key] = value
	return nil
}

func (s *MockInternalStore) Close() error { return nil }

// MockProfileStore keeps one profile per user.
type MockProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*models.InvestorProfile
}

func (s *MockProfileStore) Get(ctx context.Context, userID string) (*models.InvestorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		copied := *p
		copied.LiquidityRequirements = slices.Clone(p.LiquidityRequirements)
		copied.SectorPreferences = slices.Clone(p.SectorPreferences)
		return &copied, nil
	}
	return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
}

func (s *MockProfileStore) Save(ctx context.Context, profile *models.InvestorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	copied.LiquidityRequirements = slices.Clone(profile.LiquidityRequirements)
	copied.SectorPreferences = slices.Clone(profile.SectorPreferences)
	s.profiles[profile.UserID] = &copied
	return nil
}

func (s *MockProfileStore) TryInitChat(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok || p.FirstChatInitiated {
		return false, nil
	}
	p.FirstChatInitiated = true
	return true, nil
}

// MockChatStore appends messages to a slice.
type MockChatStore struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
	// AppendErr, when set, fails every Append.
	AppendErr error
}

func (s *MockChatStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return s.AppendErr
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	copied := *msg
	s.messages = append(s.messages, &copied)
	return nil
}

func (s *MockChatStore) List(ctx context.Context, userID, portfolioID string) ([]*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ChatMessage
	for _, m := range s.messages {
		if m.UserID == userID && m.PortfolioID == portfolioID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

// MockSuggestionStore honors the consume-once contract under a mutex.
type MockSuggestionStore struct {
	mu          sync.Mutex
	suggestions map[string]*models.PortfolioSuggestion
}

func (s *MockSuggestionStore) Save(ctx context.Context, sg *models.PortfolioSuggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sg
	s.suggestions[sg.ID] = &copied
	return nil
}

func (s *MockSuggestionStore) Get(ctx context.Context, userID, id string) (*models.PortfolioSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sg, ok := s.suggestions[id]; ok && sg.UserID == userID {
		copied := *sg
		return &copied, nil
	}
	return nil, fmt.Errorf("suggestion %s: %w", id, models.ErrNotFound)
}

func (s *MockSuggestionStore) Consume(ctx context.Context, userID, id string) (*models.PortfolioSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.suggestions[id]
	if !ok || sg.UserID != userID {
		return nil, fmt.Errorf("suggestion %s: %w", id, models.ErrNotFound)
	}
	delete(s.suggestions, id)
	return sg, nil
}

// MockPortfolioStore keeps portfolios in a map.
type MockPortfolioStore struct {
	mu         sync.Mutex
	portfolios map[string]*models.Portfolio
}

func (s *MockPortfolioStore) Save(ctx context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	copied := *p
	copied.Allocations = slices.Clone(p.Allocations)
	copied.Holdings = slices.Clone(p.Holdings)
	s.portfolios[p.ID] = &copied
	return nil
}

func (s *MockPortfolioStore) Get(ctx context.Context, userID, id string) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.portfolios[id]; ok && p.UserID == userID {
		copied := *p
		copied.Allocations = slices.Clone(p.Allocations)
		copied.Holdings = slices.Clone(p.Holdings)
		return &copied, nil
	}
	return nil, fmt.Errorf("portfolio %s: %w", id, models.ErrNotFound)
}

func (s *MockPortfolioStore) List(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Portfolio
	for _, p := range s.portfolios {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MockPortfolioStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.portfolios[id]; ok && p.UserID == userID {
		delete(s.portfolios, id)
		return nil
	}
	return fmt.Errorf("portfolio %s: %w", id, models.ErrNotFound)
}

// MockGeminiClient returns canned responses and records prompts.
type MockGeminiClient struct {
	mu       sync.Mutex
	Response string
	Err      error
	// GenerateFunc, when set, overrides Response/Err.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	Prompts      []string
}

func (c *MockGeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.Prompts = append(c.Prompts, prompt)
	fn := c.GenerateFunc
	resp, err := c.Response, c.Err
	c.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return resp, err
}

func (c *MockGeminiClient) Close() error { return nil }

var _ interfaces.GeminiClient = (*MockGeminiClient)(nil)
