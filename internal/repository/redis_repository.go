package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"ollama-chat/backend/internal/model"
)

// redisRepository is the alternate storage backend. Chats and messages live
// in hashes; ordering comes from sorted sets (messages scored by timestamp,
// chats and servers scored by negated update time so ascending range reads
// newest-first).
type redisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) Repository {
	return &redisRepository{rdb: rdb}
}

func (r *redisRepository) chatKey(chatID string) string       { return fmt.Sprintf("chat:%s", chatID) }
func (r *redisRepository) messagesKey(chatID string) string   { return fmt.Sprintf("chat:%s:messages", chatID) }
func (r *redisRepository) messageKey(messageID string) string { return fmt.Sprintf("message:%s", messageID) }
func (r *redisRepository) serverKey(serverID string) string   { return fmt.Sprintf("server:%s", serverID) }

const (
	chatsKey         = "chats"
	serversKey       = "servers"
	defaultServerKey = "server:default"
)

func (r *redisRepository) CreateChat(ctx context.Context, chat *model.Chat) error {
	chatMap, err := structToMap(chat)
	if err != nil {
		return fmt.Errorf("could not convert chat to map: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.chatKey(chat.ID), chatMap)
	pipe.ZAdd(ctx, chatsKey, redis.Z{Score: float64(-chat.UpdatedAt.UnixNano()), Member: chat.ID})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	chatMap, err := r.rdb.HGetAll(ctx, r.chatKey(chatID)).Result()
	if err != nil {
		return nil, err
	}
	if len(chatMap) == 0 {
		return nil, ErrNotFound
	}
	var chat model.Chat
	return &chat, mapToStruct(chatMap, &chat)
}

func (r *redisRepository) GetChats(ctx context.Context) ([]*model.Chat, error) {
	chatIDs, err := r.rdb.ZRange(ctx, chatsKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	chats := make([]*model.Chat, 0, len(chatIDs))
	for _, id := range chatIDs {
		chat, err := r.GetChat(ctx, id)
		if err == nil && chat != nil {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

func (r *redisRepository) DeleteChat(ctx context.Context, chatID string) error {
	exists, err := r.rdb.Exists(ctx, r.chatKey(chatID)).Result()
	if err != nil {
		return fmt.Errorf("could not check chat for deletion: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	msgIDs, err := r.rdb.ZRange(ctx, r.messagesKey(chatID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("could not get message IDs for deletion: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	if len(msgIDs) > 0 {
		messageKeys := make([]string, len(msgIDs))
		for i, id := range msgIDs {
			messageKeys[i] = r.messageKey(id)
		}
		pipe.Del(ctx, messageKeys...)
	}
	pipe.Del(ctx, r.chatKey(chatID))
	pipe.Del(ctx, r.messagesKey(chatID))
	pipe.ZRem(ctx, chatsKey, chatID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute chat deletion pipeline: %w", err)
	}
	return nil
}

func (r *redisRepository) AddMessage(ctx context.Context, chatID string, message *model.Message) error {
	msgMap, err := structToMap(message)
	if err != nil {
		return fmt.Errorf("could not convert message to map: %w", err)
	}
	now := time.Now().UTC()
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.messageKey(message.ID), msgMap)
	pipe.ZAdd(ctx, r.messagesKey(chatID), redis.Z{Score: float64(message.Timestamp.UnixNano()), Member: message.ID})
	pipe.HSet(ctx, r.chatKey(chatID), "updated_at", now.Format(time.RFC3339Nano))
	pipe.ZAdd(ctx, chatsKey, redis.Z{Score: float64(-now.UnixNano()), Member: chatID})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	msgIDs, err := r.rdb.ZRange(ctx, r.messagesKey(chatID), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Message{}, nil
		}
		return nil, err
	}
	messages := make([]model.Message, 0, len(msgIDs))
	for _, id := range msgIDs {
		msgMap, err := r.rdb.HGetAll(ctx, r.messageKey(id)).Result()
		if err != nil {
			continue
		}
		var msg model.Message
		if err := mapToStruct(msgMap, &msg); err == nil {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (r *redisRepository) SaveServer(ctx context.Context, server *model.Server) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.serverKey(server.ID), map[string]interface{}{
		"id":             server.ID,
		"name":           server.Name,
		"url":            server.URL,
		"last_connected": server.LastConnected.Format(time.RFC3339Nano),
		"is_default":     strconv.FormatBool(server.IsDefault),
	})
	pipe.ZAdd(ctx, serversKey, redis.Z{Score: float64(-server.LastConnected.UnixNano()), Member: server.ID})
	if server.IsDefault {
		if oldID, err := r.rdb.Get(ctx, defaultServerKey).Result(); err == nil && oldID != server.ID {
			pipe.HSet(ctx, r.serverKey(oldID), "is_default", "false")
		}
		pipe.Set(ctx, defaultServerKey, server.ID, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetServers(ctx context.Context) ([]*model.Server, error) {
	serverIDs, err := r.rdb.ZRange(ctx, serversKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	servers := make([]*model.Server, 0, len(serverIDs))
	for _, id := range serverIDs {
		srv, err := r.getServer(ctx, id)
		if err == nil {
			servers = append(servers, srv)
		}
	}
	return servers, nil
}

func (r *redisRepository) GetDefaultServer(ctx context.Context) (*model.Server, error) {
	serverID, err := r.rdb.Get(ctx, defaultServerKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.getServer(ctx, serverID)
}

func (r *redisRepository) UpdateServerConnection(ctx context.Context, serverID string) error {
	now := time.Now().UTC()
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.serverKey(serverID), "last_connected", now.Format(time.RFC3339Nano))
	pipe.ZAdd(ctx, serversKey, redis.Z{Score: float64(-now.UnixNano()), Member: serverID})
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) getServer(ctx context.Context, serverID string) (*model.Server, error) {
	srvMap, err := r.rdb.HGetAll(ctx, r.serverKey(serverID)).Result()
	if err != nil {
		return nil, err
	}
	if len(srvMap) == 0 {
		return nil, ErrNotFound
	}
	lastConnected, err := time.Parse(time.RFC3339Nano, srvMap["last_connected"])
	if err != nil {
		return nil, fmt.Errorf("could not parse server timestamp: %w", err)
	}
	isDefault, _ := strconv.ParseBool(srvMap["is_default"])
	return &model.Server{
		ID:            srvMap["id"],
		Name:          srvMap["name"],
		URL:           srvMap["url"],
		LastConnected: lastConnected,
		IsDefault:     isDefault,
	}, nil
}

func structToMap(obj interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var mapData map[string]interface{}
	return mapData, json.Unmarshal(data, &mapData)
}

func mapToStruct(data map[string]string, obj interface{}) error {
	jsonStr, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonStr, obj)
}
