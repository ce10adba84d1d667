package interfaces

import (
	"context"

	"ollama-chat/backend/internal/llm"
	"ollama-chat/backend/internal/model"
	"ollama-chat/backend/internal/service"
)

// This file defines the interfaces for our core services. The API layer
// depends on these instead of concrete implementations, which decouples the
// layers and allows mocking in handler tests.

// ChatService defines the contract for chat turn orchestration.
type ChatService interface {
	SendMessage(ctx context.Context, req *service.ChatRequest) (*service.ChatResult, error)
	StreamMessage(ctx context.Context, req *service.ChatRequest, events chan<- model.StreamEvent)
	ListChats(ctx context.Context) ([]*model.Chat, error)
	GetFullChat(ctx context.Context, chatID string) (*model.FullChat, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// ModelService defines the contract for model metadata.
type ModelService interface {
	List(ctx context.Context, forceRefresh bool) (*llm.ListModelsResponse, error)
	Health(ctx context.Context) bool
}

// ServerService defines the contract for the server registry.
type ServerService interface {
	Connect(ctx context.Context, req *service.ConnectRequest) (*service.ConnectResult, error)
	List(ctx context.Context) ([]*model.Server, error)
	Default(ctx context.Context) (*model.Server, error)
}
