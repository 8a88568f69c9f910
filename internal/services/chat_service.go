package services

import (
	"context"
	"fmt"

	"docchat/internal/core"
	"docchat/internal/models"
)

// AnswerStatus distinguishes a real model answer from the two in-band
// fallback texts, so callers can treat them differently even though all
// three are persisted as ordinary assistant turns.
type AnswerStatus string

const (
	StatusAnswer     AnswerStatus = "answer"
	StatusNoDocument AnswerStatus = "no_document"
	StatusError      AnswerStatus = "error"
)

// noDocumentReply is shown (and persisted) when a question arrives before
// any document upload.
const noDocumentReply = "Please upload a document first to enable the RAG feature."

// Answer is the typed outcome of one generation attempt.
type Answer struct {
	Text   string       `json:"answer"`
	Status AnswerStatus `json:"status"`
}

type ChatService struct {
	db  core.DbClient
	llm core.LLMProvider
}

func NewChatService(db core.DbClient, llm core.LLMProvider) *ChatService {
	return &ChatService{db: db, llm: llm}
}

// Generate produces the assistant reply for a question against the held
// document text. No external call is made when documentText is empty. A
// service-level failure comes back as an in-band error text, never as an
// error return.
func (s *ChatService) Generate(ctx context.Context, documentText, question string) Answer {
	if documentText == "" {
		return Answer{Text: noDocumentReply, Status: StatusNoDocument}
	}

	prompt := buildPrompt(documentText, question)
	reply, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return Answer{Text: fmt.Sprintf("An error occurred: %v", err), Status: StatusError}
	}
	return Answer{Text: reply, Status: StatusAnswer}
}

// Ask runs one full chat exchange: persist the user turn, generate the
// reply, persist it as the assistant turn. Both writes must succeed for the
// exchange to count.
func (s *ChatService) Ask(ctx context.Context, userID int64, documentText, question string) (Answer, error) {
	if err := s.db.AppendMessage(ctx, userID, models.RoleUser, question); err != nil {
		return Answer{}, fmt.Errorf("append user turn: %w", err)
	}

	ans := s.Generate(ctx, documentText, question)

	if err := s.db.AppendMessage(ctx, userID, models.RoleAssistant, ans.Text); err != nil {
		return Answer{}, fmt.Errorf("append assistant turn: %w", err)
	}
	return ans, nil
}

// History returns the user's full transcript in creation order.
func (s *ChatService) History(ctx context.Context, userID int64) ([]models.ChatMessage, error) {
	return s.db.HistoryByUser(ctx, userID)
}

// buildPrompt embeds the whole document ahead of the question; there is no
// chunking or retrieval ranking.
func buildPrompt(documentText, question string) string {
	return fmt.Sprintf(
		"Based on the following document content, answer the user's question. Document: %s\n\nUser Question: %s",
		documentText, question,
	)
}
