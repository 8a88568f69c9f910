package app

import (
	"context"
	"fmt"
	"log"

	"docchat/internal/config"
	db "docchat/internal/core/database"
	"docchat/internal/core/extract"
	"docchat/internal/core/llm"
	"docchat/internal/core/session"
)

type App struct {
	DBClient *db.DatabaseClient
	LLM      *llm.GeminiLLM
	Sessions *session.Store
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	dbClient, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	extractor := extract.NewFileExtractor()
	sessions := session.NewStore()

	server := NewServer(cfg, dbClient, llmProvider, extractor, sessions)

	return &App{
		DBClient: dbClient.(*db.DatabaseClient),
		LLM:      llmProvider,
		Sessions: sessions,
		Server:   server,
	}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
