package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "ollama-chat/backend/internal/errors"
	"ollama-chat/backend/internal/llm"
	"ollama-chat/backend/internal/model"
	"ollama-chat/backend/internal/repository"
)

// titleLimit is the number of characters of the first message used as the
// chat title.
const titleLimit = 50

// ChatService orchestrates chat turns: it normalizes requests, assembles
// history, calls the upstream provider and persists the turn.
type ChatService struct {
	repo         repository.Repository
	llm          llm.Provider
	defaultModel string
}

func NewChatService(repo repository.Repository, provider llm.Provider, defaultModel string) *ChatService {
	return &ChatService{repo: repo, llm: provider, defaultModel: defaultModel}
}

// ChatRequest is a chat turn request from the client.
type ChatRequest struct {
	Model       string   `json:"model" validate:"required"`
	Message     string   `json:"message" validate:"required"`
	ChatID      string   `json:"chat_id,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// ChatResult is the outcome of a blocking chat turn. When persistence fails
// after a successful generation, Warning and Error are set and the
// generated text is still returned; the caller must not lose an answer
// merely because storage failed.
type ChatResult struct {
	ChatID    string `json:"chat_id,omitempty"`
	Response  string `json:"response"`
	MessageID string `json:"message_id,omitempty"`
	Warning   string `json:"warning,omitempty"`
	Error     string `json:"error,omitempty"`
}

// turnRequest is a normalized chat turn: validated fields plus the resolved
// generation parameters.
type turnRequest struct {
	Model   string
	Message string
	ChatID  string
	Params  llm.Params
}

// normalize validates the request and resolves the effective generation
// parameters. It has no side effects and performs no I/O, so an invalid
// request is rejected before any network call.
func (s *ChatService) normalize(req *ChatRequest) (*turnRequest, error) {
	if strings.TrimSpace(req.Model) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: model and message are required", apperrors.ErrValidation)
	}
	return &turnRequest{
		Model:   req.Model,
		Message: req.Message,
		ChatID:  req.ChatID,
		Params:  llm.ResolveParams(req.Model, s.defaultModel, req.Temperature, req.MaxTokens),
	}, nil
}

// assembleHistory reconstructs the ordered role/content context for an
// existing chat. An absent, unknown or empty chat id means "no context",
// never a failure; a real storage error is logged and the turn proceeds
// without context.
func (s *ChatService) assembleHistory(ctx context.Context, chatID string) []llm.Message {
	if chatID == "" {
		return nil
	}
	messages, err := s.repo.GetMessages(ctx, chatID)
	if err != nil {
		slog.Warn("Could not load chat history, continuing without context", "chat_id", chatID, "error", err)
		return nil
	}
	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	return history
}

// SendMessage handles a blocking chat turn: normalize, assemble history,
// one blocking upstream call, then persistence. Persistence runs only
// after the upstream call succeeded; if persistence fails the generated
// text is returned with a warning instead of an error status.
func (s *ChatService) SendMessage(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	turn, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	messages := append(s.assembleHistory(ctx, turn.ChatID), llm.Message{Role: "user", Content: turn.Message})
	resp, err := s.llm.Chat(ctx, &llm.ChatRequest{Model: turn.Model, Messages: messages, Params: turn.Params})
	if err != nil {
		return nil, err
	}

	chatID, messageID, err := s.persistTurn(ctx, turn, resp.Message.Content)
	if err != nil {
		slog.Error("Failed to persist chat turn", "chat_id", chatID, "error", err)
		return &ChatResult{
			ChatID:   chatID,
			Response: resp.Message.Content,
			Warning:  "response generated, but saving the chat failed",
			Error:    err.Error(),
		}, nil
	}

	return &ChatResult{ChatID: chatID, Response: resp.Message.Content, MessageID: messageID}, nil
}

// persistTurn creates the chat if needed and appends the user and assistant
// messages. It returns the chat id (which may have been created here), the
// assistant message id, and the first persistence error encountered.
func (s *ChatService) persistTurn(ctx context.Context, turn *turnRequest, assistantContent string) (string, string, error) {
	chatID := turn.ChatID
	if chatID == "" {
		chat := newChat(turn.Message, turn.Model)
		if err := s.repo.CreateChat(ctx, chat); err != nil {
			return "", "", fmt.Errorf("%w: could not create chat: %v", apperrors.ErrPersistence, err)
		}
		chatID = chat.ID
	}

	if err := s.addMessage(ctx, chatID, "user", turn.Message); err != nil {
		return chatID, "", err
	}
	assistantID, err := s.addMessageID(ctx, chatID, "assistant", assistantContent)
	if err != nil {
		return chatID, "", err
	}
	return chatID, assistantID, nil
}

// streamState is the per-call state of the streaming relay. The chat id and
// the created flag live here, threaded through the relay's transitions,
// rather than in variables captured by the event loop.
type streamState struct {
	chatID  string
	created bool
	full    strings.Builder
}

// StreamMessage handles a streaming chat turn and emits frames on events.
// The relay resolves (or creates, exactly once) the chat, makes the user
// message durable before the first upstream read, forwards each content
// delta verbatim while accumulating the full answer, and persists one
// assistant message when the stream ends cleanly. An upstream error frame
// ends the turn without persisting the partial answer; on caller
// disconnect the user message remains the only durable record of the turn.
// Every frame send is guarded by the caller's context so a receiver that
// stopped listening cannot strand the relay. The events channel is always
// closed before StreamMessage returns.
func (s *ChatService) StreamMessage(ctx context.Context, req *ChatRequest, events chan<- model.StreamEvent) {
	defer close(events)

	turn, err := s.normalize(req)
	if err != nil {
		send(ctx, events, model.StreamEvent{Error: err.Error()})
		return
	}

	// History is assembled before the new user message is persisted so the
	// context prefix holds only prior turns.
	messages := append(s.assembleHistory(ctx, turn.ChatID), llm.Message{Role: "user", Content: turn.Message})

	st := &streamState{chatID: turn.ChatID}
	if st.chatID == "" {
		chat := newChat(turn.Message, turn.Model)
		if err := s.repo.CreateChat(ctx, chat); err != nil {
			slog.Error("Could not create chat for stream", "error", err)
			send(ctx, events, model.StreamEvent{Error: "could not create chat"})
			return
		}
		st.chatID = chat.ID
		st.created = true
		// The new id reaches the caller before any content is forwarded.
		if !send(ctx, events, model.StreamEvent{ChatID: st.chatID}) {
			return
		}
	}

	// The user's turn is durable before the first upstream chunk is
	// requested, even if the upstream call fails afterwards.
	if err := s.addMessage(ctx, st.chatID, "user", turn.Message); err != nil {
		slog.Error("Could not save user message", "chat_id", st.chatID, "error", err)
		send(ctx, events, model.StreamEvent{Error: "could not save message"})
		return
	}

	upstream := make(chan llm.StreamChunk)
	go func() {
		if err := s.llm.ChatStream(ctx, &llm.ChatRequest{Model: turn.Model, Messages: messages, Params: turn.Params}, upstream); err != nil {
			slog.Warn("Upstream stream ended with error", "chat_id", st.chatID, "error", err)
		}
	}()

	for chunk := range upstream {
		if chunk.Err != "" {
			// The partial text accumulated so far is discarded; only the
			// user message stays durable for this turn.
			send(ctx, events, model.StreamEvent{Error: chunk.Err})
			return
		}
		if chunk.Content != "" {
			st.full.WriteString(chunk.Content)
			if !send(ctx, events, model.StreamEvent{Content: chunk.Content}) {
				return
			}
		}
	}

	if ctx.Err() != nil {
		slog.Info("Stream cancelled by caller", "chat_id", st.chatID)
		return
	}

	messageID, err := s.addMessageID(ctx, st.chatID, "assistant", st.full.String())
	if err != nil {
		slog.Error("Failed to save assistant message", "chat_id", st.chatID, "error", err)
		send(ctx, events, model.StreamEvent{Error: "response generated, but saving the message failed"})
		return
	}

	send(ctx, events, model.StreamEvent{Done: true, MessageID: messageID})
}

// send forwards one frame unless the receiver has stopped listening.
func send(ctx context.Context, events chan<- model.StreamEvent, event model.StreamEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// ListChats retrieves all chats, most recently updated first.
func (s *ChatService) ListChats(ctx context.Context) ([]*model.Chat, error) {
	return s.repo.GetChats(ctx)
}

// GetFullChat retrieves a chat's metadata and all its messages.
func (s *ChatService) GetFullChat(ctx context.Context, chatID string) (*model.FullChat, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: chat %s", apperrors.ErrNotFound, chatID)
		}
		return nil, fmt.Errorf("could not get chat: %w", err)
	}
	messages, err := s.repo.GetMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages: %w", err)
	}
	return &model.FullChat{Chat: *chat, Messages: messages}, nil
}

// DeleteChat deletes a chat and all its messages.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	if err := s.repo.DeleteChat(ctx, chatID); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: chat %s", apperrors.ErrNotFound, chatID)
		}
		return fmt.Errorf("%w: could not delete chat: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *ChatService) addMessage(ctx context.Context, chatID, role, content string) error {
	_, err := s.addMessageID(ctx, chatID, role, content)
	return err
}

func (s *ChatService) addMessageID(ctx context.Context, chatID, role, content string) (string, error) {
	msg := &model.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.AddMessage(ctx, chatID, msg); err != nil {
		return "", fmt.Errorf("%w: could not save %s message: %v", apperrors.ErrPersistence, role, err)
	}
	return msg.ID, nil
}

func newChat(firstMessage, modelName string) *model.Chat {
	now := time.Now().UTC()
	return &model.Chat{
		ID:        uuid.NewString(),
		Title:     synthesizeTitle(firstMessage),
		Model:     modelName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// synthesizeTitle derives a chat title from the first message: truncated to
// titleLimit characters with an ellipsis appended when truncated.
func synthesizeTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}
