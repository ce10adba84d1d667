package repository

import (
	"context"

	"ollama-chat/backend/internal/model"
)

// Repository defines the interface for data storage operations.
// This interface makes it easy to switch database implementations.
type Repository interface {
	CreateChat(ctx context.Context, chat *model.Chat) error
	GetChat(ctx context.Context, chatID string) (*model.Chat, error)
	GetChats(ctx context.Context) ([]*model.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error

	// AddMessage appends a message and refreshes the chat's updated_at as
	// a side effect.
	AddMessage(ctx context.Context, chatID string, message *model.Message) error
	// GetMessages returns a chat's messages oldest first. An unknown chat
	// yields an empty slice, not an error.
	GetMessages(ctx context.Context, chatID string) ([]model.Message, error)

	SaveServer(ctx context.Context, server *model.Server) error
	GetServers(ctx context.Context) ([]*model.Server, error)
	GetDefaultServer(ctx context.Context) (*model.Server, error)
	UpdateServerConnection(ctx context.Context, serverID string) error
}
