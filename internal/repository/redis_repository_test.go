package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ollama-chat/backend/internal/model"
)

// setupRedisRepo runs the repository against an in-memory redis server so
// the sorted-set scores and range order are asserted against real redis
// semantics, not mocks.
func setupRedisRepo(t *testing.T) (Repository, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRepository(rdb), rdb
}

func newTestChat(id string, updatedAt time.Time) *model.Chat {
	return &model.Chat{ID: id, Title: "t", Model: "llama3", CreatedAt: updatedAt, UpdatedAt: updatedAt}
}

// TestRedisRepository_MessageOrdering verifies that messages are scored by
// their timestamp and read back oldest first, regardless of insert order.
func TestRedisRepository_MessageOrdering(t *testing.T) {
	repo, rdb := setupRedisRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateChat(ctx, newTestChat("chat-1", base)))

	// Inserted newest first; read order must come from the scores.
	second := &model.Message{ID: "msg-2", ChatID: "chat-1", Role: "assistant", Content: "hello", Timestamp: base.Add(2 * time.Second)}
	first := &model.Message{ID: "msg-1", ChatID: "chat-1", Role: "user", Content: "hi", Timestamp: base.Add(time.Second)}
	require.NoError(t, repo.AddMessage(ctx, "chat-1", second))
	require.NoError(t, repo.AddMessage(ctx, "chat-1", first))

	messages, err := repo.GetMessages(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-1", messages[0].ID)
	assert.Equal(t, "msg-2", messages[1].ID)

	// The score is the message timestamp in nanoseconds.
	score, err := rdb.ZScore(ctx, "chat:chat-1:messages", "msg-1").Result()
	require.NoError(t, err)
	assert.Equal(t, float64(first.Timestamp.UnixNano()), score)
}

// TestRedisRepository_ChatOrdering verifies that chats are scored by the
// negated update time, so an ascending range read lists newest first.
func TestRedisRepository_ChatOrdering(t *testing.T) {
	repo, rdb := setupRedisRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	older := newTestChat("chat-old", base)
	newer := newTestChat("chat-new", base.Add(time.Minute))
	require.NoError(t, repo.CreateChat(ctx, older))
	require.NoError(t, repo.CreateChat(ctx, newer))

	score, err := rdb.ZScore(ctx, "chats", "chat-new").Result()
	require.NoError(t, err)
	assert.Equal(t, float64(-newer.UpdatedAt.UnixNano()), score)

	chats, err := repo.GetChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "chat-new", chats[0].ID)
	assert.Equal(t, "chat-old", chats[1].ID)

	// Appending a message bumps the chat back to the front.
	msg := &model.Message{ID: "msg-1", ChatID: "chat-old", Role: "user", Content: "hi", Timestamp: time.Now().UTC()}
	require.NoError(t, repo.AddMessage(ctx, "chat-old", msg))

	chats, err = repo.GetChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "chat-old", chats[0].ID)
}

func TestRedisRepository_GetChat(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		chat := newTestChat("chat-1", time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
		require.NoError(t, repo.CreateChat(ctx, chat))

		got, err := repo.GetChat(ctx, "chat-1")
		require.NoError(t, err)
		assert.Equal(t, chat.Title, got.Title)
		assert.True(t, chat.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("Failure - unknown chat", func(t *testing.T) {
		_, err := repo.GetChat(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestRedisRepository_GetMessages_UnknownChat(t *testing.T) {
	repo, _ := setupRedisRepo(t)

	messages, err := repo.GetMessages(context.Background(), "nope")

	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRedisRepository_DeleteChat(t *testing.T) {
	repo, rdb := setupRedisRepo(t)
	ctx := context.Background()

	t.Run("Success - removes the chat and its message records", func(t *testing.T) {
		require.NoError(t, repo.CreateChat(ctx, newTestChat("chat-1", time.Now().UTC())))
		msg := &model.Message{ID: "msg-1", ChatID: "chat-1", Role: "user", Content: "hi", Timestamp: time.Now().UTC()}
		require.NoError(t, repo.AddMessage(ctx, "chat-1", msg))

		require.NoError(t, repo.DeleteChat(ctx, "chat-1"))

		_, err := repo.GetChat(ctx, "chat-1")
		assert.True(t, errors.Is(err, ErrNotFound))
		exists, err := rdb.Exists(ctx, "message:msg-1").Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("Failure - unknown chat", func(t *testing.T) {
		err := repo.DeleteChat(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestRedisRepository_DefaultServer(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Failure - none configured", func(t *testing.T) {
		_, err := repo.GetDefaultServer(ctx)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("Success - a new default demotes the previous one", func(t *testing.T) {
		first := &model.Server{ID: "srv-1", Name: "a", URL: "http://10.0.0.1:11434", LastConnected: now, IsDefault: true}
		second := &model.Server{ID: "srv-2", Name: "b", URL: "http://10.0.0.2:11434", LastConnected: now.Add(time.Second), IsDefault: true}
		require.NoError(t, repo.SaveServer(ctx, first))
		require.NoError(t, repo.SaveServer(ctx, second))

		def, err := repo.GetDefaultServer(ctx)
		require.NoError(t, err)
		assert.Equal(t, "srv-2", def.ID)

		servers, err := repo.GetServers(ctx)
		require.NoError(t, err)
		require.Len(t, servers, 2)
		defaults := 0
		for _, srv := range servers {
			if srv.IsDefault {
				defaults++
			}
		}
		assert.Equal(t, 1, defaults)
	})
}
