package model

import (
	"time"
)

// Chat stores metadata about a conversation.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message stores a single message in a chat. Messages are immutable once
// written; ordering is by timestamp, ties broken by insertion order.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FullChat includes the chat metadata and all its messages.
type FullChat struct {
	Chat
	Messages []Message `json:"messages"`
}

// Server is a saved Ollama server in the connection registry.
type Server struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	LastConnected time.Time `json:"last_connected"`
	IsDefault     bool      `json:"is_default"`
}

// StreamEvent is a single frame of a streaming chat response. Exactly one
// field group is set per frame: chat_id (announces a newly created chat),
// content (one delta), done+message_id (terminal success) or error
// (terminal failure, mutually exclusive with done).
type StreamEvent struct {
	ChatID    string `json:"chat_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Done      bool   `json:"done,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
