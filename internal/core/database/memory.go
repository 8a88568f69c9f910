package db

import (
	"context"
	"sync"
	"time"

	"docchat/internal/core"
	"docchat/internal/models"
)

// MemoryClient keeps users and chat history in-process. It implements the
// same contract as the Postgres client, including insertion-order history
// and duplicate-username rejection, and backs the test suite.
type MemoryClient struct {
	mu       sync.RWMutex
	nextUser int64
	nextMsg  int64
	users    map[string]models.User         // key: username
	history  map[int64][]models.ChatMessage // key: user ID
}

// NewMemoryClient initializes an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		users:   make(map[string]models.User),
		history: make(map[int64][]models.ChatMessage),
	}
}

func (m *MemoryClient) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Username]; exists {
		return core.ErrDuplicateUsername
	}
	m.nextUser++
	user.ID = m.nextUser
	user.CreatedAt = time.Now().UTC()
	m.users[user.Username] = *user
	return nil
}

func (m *MemoryClient) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryClient) AppendMessage(_ context.Context, userID int64, role, content string) error {
	if role != models.RoleUser && role != models.RoleAssistant {
		return core.ErrInvalidRole
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsg++
	m.history[userID] = append(m.history[userID], models.ChatMessage{
		ID:        m.nextMsg,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *MemoryClient) HistoryByUser(_ context.Context, userID int64) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.history[userID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MemoryClient) Close() error { return nil }

var _ core.DbClient = (*MemoryClient)(nil)
