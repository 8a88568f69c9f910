package core

import (
	"context"

	"docchat/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	AppendMessage(ctx context.Context, userID int64, role, content string) error
	HistoryByUser(ctx context.Context, userID int64) ([]models.ChatMessage, error)

	Close() error
}

// LLMProvider is the synchronous text-generation service behind the chat.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DocumentExtractor turns an uploaded file into plain text. The contentType
// hint picks the parsing strategy.
type DocumentExtractor interface {
	Extract(data []byte, contentType string) (string, error)
}
