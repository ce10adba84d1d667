package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "ollama-chat/backend/internal/errors"
	"ollama-chat/backend/internal/llm"
	mock_llm "ollama-chat/backend/internal/llm/mocks"
	"ollama-chat/backend/internal/model"
	"ollama-chat/backend/internal/repository"
	mock_repo "ollama-chat/backend/internal/repository/mocks"
	"ollama-chat/backend/internal/service"
)

type chatMocks struct {
	repo *mock_repo.MockRepository
	llm  *mock_llm.MockProvider
}

func setupChatService(t *testing.T) (*service.ChatService, chatMocks) {
	mocks := chatMocks{
		repo: mock_repo.NewMockRepository(t),
		llm:  mock_llm.NewMockProvider(t),
	}
	return service.NewChatService(mocks.repo, mocks.llm, "llama3"), mocks
}

// drainEvents reads all relay frames until the service closes the channel.
func drainEvents(events <-chan model.StreamEvent) []model.StreamEvent {
	var out []model.StreamEvent
	for event := range events {
		out = append(out, event)
	}
	return out
}

// TestChatService_SendMessage covers the blocking turn: validation before
// any network call, history assembly, persistence ordering, and the
// degraded result when persistence fails after a successful generation.
func TestChatService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Failure - invalid request is rejected before any call", func(t *testing.T) {
		chatService, _ := setupChatService(t)

		// No expectations are registered on either mock: a validation
		// failure must touch neither storage nor the upstream.
		_, err := chatService.SendMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "   "})

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("Success - new chat persists user then assistant", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		var createdChat *model.Chat
		var persistedRoles []string

		mocks.repo.On("CreateChat", ctx, mock.AnythingOfType("*model.Chat")).
			Run(func(args mock.Arguments) {
				createdChat = args.Get(1).(*model.Chat)
			}).Return(nil).Once()
		mocks.repo.On("AddMessage", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("*model.Message")).
			Run(func(args mock.Arguments) {
				persistedRoles = append(persistedRoles, args.Get(2).(*model.Message).Role)
			}).Return(nil).Twice()
		mocks.llm.On("Chat", ctx, mock.MatchedBy(func(req *llm.ChatRequest) bool {
			// Without a chat id the context is exactly the new user message.
			return len(req.Messages) == 1 && req.Messages[0].Role == "user" && req.Messages[0].Content == "Hello"
		})).Return(&llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: "Hi!"}, Done: true}, nil).Once()

		result, err := chatService.SendMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "Hello"})

		require.NoError(t, err)
		assert.Equal(t, "Hi!", result.Response)
		assert.NotEmpty(t, result.ChatID)
		assert.NotEmpty(t, result.MessageID)
		assert.Empty(t, result.Warning)

		require.NotNil(t, createdChat)
		assert.Equal(t, result.ChatID, createdChat.ID)
		assert.Equal(t, "Hello", createdChat.Title)
		assert.Equal(t, []string{"user", "assistant"}, persistedRoles)
	})

	t.Run("Success - existing chat sends history plus the new message", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		chatID := "chat-1"

		history := []model.Message{
			{Role: "user", Content: "What is Go?"},
			{Role: "assistant", Content: "A language."},
		}
		mocks.repo.On("GetMessages", ctx, chatID).Return(history, nil).Once()
		mocks.repo.On("AddMessage", ctx, chatID, mock.AnythingOfType("*model.Message")).Return(nil).Twice()
		mocks.llm.On("Chat", ctx, mock.MatchedBy(func(req *llm.ChatRequest) bool {
			return len(req.Messages) == 3 &&
				req.Messages[0].Content == "What is Go?" &&
				req.Messages[2].Role == "user" && req.Messages[2].Content == "Tell me more"
		})).Return(&llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: "Sure."}}, nil).Once()

		result, err := chatService.SendMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "Tell me more", ChatID: chatID})

		require.NoError(t, err)
		assert.Equal(t, chatID, result.ChatID)
	})

	t.Run("Success - history load failure degrades to an empty context", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		chatID := "chat-1"

		mocks.repo.On("GetMessages", ctx, chatID).Return(nil, errors.New("db gone")).Once()
		mocks.repo.On("AddMessage", ctx, chatID, mock.AnythingOfType("*model.Message")).Return(nil).Twice()
		mocks.llm.On("Chat", ctx, mock.MatchedBy(func(req *llm.ChatRequest) bool {
			return len(req.Messages) == 1
		})).Return(&llm.ChatResponse{Message: llm.Message{Content: "ok"}}, nil).Once()

		_, err := chatService.SendMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "hi", ChatID: chatID})
		require.NoError(t, err)
	})

	t.Run("Failure - upstream error is returned and nothing is persisted", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.llm.On("Chat", ctx, mock.Anything).
			Return(nil, apperrors.ErrUpstream).Once()

		_, err := chatService.SendMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "hi"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUpstream))
		mocks.repo.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything)
		mocks.repo.AssertNotCalled(t, "AddMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Degraded - persistence failure still returns the generated text", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.llm.On("Chat", ctx, mock.Anything).
			Return(&llm.ChatResponse{Message: llm.Message{Content: "the answer"}}, nil).Once()
		mocks.repo.On("CreateChat", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		result, err := chatService.SendMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "hi"})

		// The generated answer must not be lost behind an error status.
		require.NoError(t, err)
		assert.Equal(t, "the answer", result.Response)
		assert.NotEmpty(t, result.Warning)
		assert.NotEmpty(t, result.Error)
		assert.Empty(t, result.MessageID)
	})
}

// TestChatService_StreamMessage covers the streaming relay: frame ordering,
// the durability of the user message before the first upstream read, and
// the discard of partial output on an upstream error.
func TestChatService_StreamMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - new chat emits id, deltas, then done", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		var callOrder []string
		var assistantContent string

		mocks.repo.On("CreateChat", ctx, mock.AnythingOfType("*model.Chat")).
			Run(func(args mock.Arguments) { callOrder = append(callOrder, "CreateChat") }).
			Return(nil).Once()
		mocks.repo.On("AddMessage", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("*model.Message")).
			Run(func(args mock.Arguments) {
				msg := args.Get(2).(*model.Message)
				callOrder = append(callOrder, "AddMessage:"+msg.Role)
				if msg.Role == "assistant" {
					assistantContent = msg.Content
				}
			}).Return(nil).Twice()
		mocks.llm.On("ChatStream", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				callOrder = append(callOrder, "ChatStream")
				upstream := args.Get(2).(chan<- llm.StreamChunk)
				upstream <- llm.StreamChunk{Content: "Hel"}
				upstream <- llm.StreamChunk{Content: "lo!"}
				upstream <- llm.StreamChunk{Done: true}
				close(upstream)
			}).Return(nil).Once()

		events := make(chan model.StreamEvent, 16)
		chatService.StreamMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "Hi"}, events)
		frames := drainEvents(events)

		// chat_id frame first, then the deltas in order, then done.
		require.Len(t, frames, 4)
		assert.NotEmpty(t, frames[0].ChatID)
		assert.Equal(t, "Hel", frames[1].Content)
		assert.Equal(t, "lo!", frames[2].Content)
		assert.True(t, frames[3].Done)
		assert.NotEmpty(t, frames[3].MessageID)

		// The persisted assistant message is the concatenation of the deltas.
		assert.Equal(t, "Hello!", assistantContent)
		// The user message is durable before the first upstream read.
		assert.Equal(t, []string{"CreateChat", "AddMessage:user", "ChatStream", "AddMessage:assistant"}, callOrder)
	})

	t.Run("Failure - upstream error discards the partial answer", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		chatID := "chat-1"

		mocks.repo.On("GetMessages", ctx, chatID).Return([]model.Message{}, nil).Once()
		// Only the user message is persisted; the assistant never is.
		mocks.repo.On("AddMessage", ctx, chatID, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == "user"
		})).Return(nil).Once()
		mocks.llm.On("ChatStream", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				upstream := args.Get(2).(chan<- llm.StreamChunk)
				upstream <- llm.StreamChunk{Content: "partial "}
				upstream <- llm.StreamChunk{Err: "upstream died"}
				close(upstream)
			}).Return(nil).Once()

		events := make(chan model.StreamEvent, 16)
		chatService.StreamMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "Hi", ChatID: chatID}, events)
		frames := drainEvents(events)

		require.Len(t, frames, 2)
		assert.Equal(t, "partial ", frames[0].Content)
		assert.Equal(t, "upstream died", frames[1].Error)
	})

	t.Run("Failure - invalid request emits one error frame and nothing else", func(t *testing.T) {
		chatService, _ := setupChatService(t)

		events := make(chan model.StreamEvent, 4)
		chatService.StreamMessage(ctx, &service.ChatRequest{Model: "", Message: "Hi"}, events)
		frames := drainEvents(events)

		require.Len(t, frames, 1)
		assert.NotEmpty(t, frames[0].Error)
	})

	t.Run("Failure - chat creation error ends the turn before the upstream", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("CreateChat", ctx, mock.Anything).Return(errors.New("db error")).Once()

		events := make(chan model.StreamEvent, 4)
		chatService.StreamMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "Hi"}, events)
		frames := drainEvents(events)

		require.Len(t, frames, 1)
		assert.Contains(t, frames[0].Error, "could not create chat")
		mocks.llm.AssertNotCalled(t, "ChatStream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cancelled - a vanished receiver never strands the relay", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		chatID := "chat-1"

		cancelCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mocks.repo.On("GetMessages", mock.Anything, chatID).Return([]model.Message{}, nil).Once()
		mocks.repo.On("AddMessage", mock.Anything, chatID, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == "user"
		})).Return(nil).Once()
		mocks.llm.On("ChatStream", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				streamCtx := args.Get(0).(context.Context)
				upstream := args.Get(2).(chan<- llm.StreamChunk)
				defer close(upstream)
				for {
					select {
					case upstream <- llm.StreamChunk{Content: "delta "}:
					case <-streamCtx.Done():
						return
					}
				}
			}).Return(nil).Once()

		// An unbuffered channel, like the handler's: once the reader is
		// gone every further send would block without the context guard.
		events := make(chan model.StreamEvent)
		done := make(chan struct{})
		go func() {
			chatService.StreamMessage(cancelCtx, &service.ChatRequest{Model: "llama3", Message: "Hi", ChatID: chatID}, events)
			close(done)
		}()

		// Take one frame, then walk away like a disconnected client.
		<-events
		cancel()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("relay did not return after the receiver went away")
		}
		// Only the user message was persisted for the abandoned turn; an
		// assistant write would fail the unmatched-call check on the mock.
	})

	t.Run("Degraded - assistant save failure reports an error frame", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		chatID := "chat-1"

		mocks.repo.On("GetMessages", ctx, chatID).Return([]model.Message{}, nil).Once()
		mocks.repo.On("AddMessage", ctx, chatID, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == "user"
		})).Return(nil).Once()
		mocks.repo.On("AddMessage", ctx, chatID, mock.MatchedBy(func(m *model.Message) bool {
			return m.Role == "assistant"
		})).Return(errors.New("disk full")).Once()
		mocks.llm.On("ChatStream", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				upstream := args.Get(2).(chan<- llm.StreamChunk)
				upstream <- llm.StreamChunk{Content: "answer"}
				upstream <- llm.StreamChunk{Done: true}
				close(upstream)
			}).Return(nil).Once()

		events := make(chan model.StreamEvent, 16)
		chatService.StreamMessage(ctx, &service.ChatRequest{Model: "llama3", Message: "Hi", ChatID: chatID}, events)
		frames := drainEvents(events)

		require.Len(t, frames, 2)
		assert.Equal(t, "answer", frames[0].Content)
		assert.NotEmpty(t, frames[1].Error)
		// No done frame follows the error.
		assert.False(t, frames[1].Done)
	})
}

func TestChatService_Titles(t *testing.T) {
	ctx := context.Background()

	t.Run("Long first message is truncated with an ellipsis", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		longMessage := strings.Repeat("a", 80)

		var createdChat *model.Chat
		mocks.repo.On("CreateChat", ctx, mock.AnythingOfType("*model.Chat")).
			Run(func(args mock.Arguments) { createdChat = args.Get(1).(*model.Chat) }).
			Return(nil).Once()
		mocks.repo.On("AddMessage", ctx, mock.Anything, mock.Anything).Return(nil).Twice()
		mocks.llm.On("Chat", ctx, mock.Anything).
			Return(&llm.ChatResponse{Message: llm.Message{Content: "ok"}}, nil).Once()

		_, err := chatService.SendMessage(ctx, &service.ChatRequest{Model: "llama3", Message: longMessage})

		require.NoError(t, err)
		require.NotNil(t, createdChat)
		assert.Equal(t, strings.Repeat("a", 50)+"...", createdChat.Title)
	})
}

func TestChatService_GetFullChat(t *testing.T) {
	ctx := context.Background()
	chatID := "chat-1"

	t.Run("Success", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		chat := &model.Chat{ID: chatID, Title: "Test"}
		messages := []model.Message{{ID: "msg-1", Role: "user"}}
		mocks.repo.On("GetChat", ctx, chatID).Return(chat, nil).Once()
		mocks.repo.On("GetMessages", ctx, chatID).Return(messages, nil).Once()

		fullChat, err := chatService.GetFullChat(ctx, chatID)

		require.NoError(t, err)
		assert.Equal(t, chat, &fullChat.Chat)
		assert.Equal(t, messages, fullChat.Messages)
	})

	t.Run("Failure - unknown chat maps to the not-found sentinel", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", ctx, chatID).Return(nil, repository.ErrNotFound).Once()

		_, err := chatService.GetFullChat(ctx, chatID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestChatService_DeleteChat(t *testing.T) {
	ctx := context.Background()
	chatID := "chat-1"

	t.Run("Success", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		mocks.repo.On("DeleteChat", ctx, chatID).Return(nil).Once()

		assert.NoError(t, chatService.DeleteChat(ctx, chatID))
	})

	t.Run("Failure - unknown chat maps to the not-found sentinel", func(t *testing.T) {
		chatService, mocks := setupChatService(t)
		mocks.repo.On("DeleteChat", ctx, chatID).Return(repository.ErrNotFound).Once()

		err := chatService.DeleteChat(ctx, chatID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}
