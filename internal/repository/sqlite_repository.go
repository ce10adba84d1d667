package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ollama-chat/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateChat(ctx context.Context, chat *model.Chat) error {
	query := "INSERT INTO chats (id, title, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, chat.ID, chat.Title, chat.Model, chat.CreatedAt, chat.UpdatedAt)
	return err
}

func (r *sqliteRepository) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	query := "SELECT id, title, model, created_at, updated_at FROM chats WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, chatID)
	var chat model.Chat
	err := row.Scan(&chat.ID, &chat.Title, &chat.Model, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *sqliteRepository) GetChats(ctx context.Context) ([]*model.Chat, error) {
	query := "SELECT id, title, model, created_at, updated_at FROM chats ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.Model, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	return chats, rows.Err()
}

func (r *sqliteRepository) DeleteChat(ctx context.Context, chatID string) error {
	// Messages go with the chat via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", chatID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMessage inserts the message and refreshes the chat's updated_at in one
// transaction.
func (r *sqliteRepository) AddMessage(ctx context.Context, chatID string, message *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := "INSERT INTO messages (id, chat_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)"
	_, err = tx.ExecContext(ctx, insertQuery, message.ID, chatID, message.Role, message.Content, message.Timestamp)
	if err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE chats SET updated_at = ? WHERE id = ?", time.Now().UTC(), chatID)
	if err != nil {
		return fmt.Errorf("could not update chat timestamp: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	// rowid breaks timestamp ties in insertion order.
	query := `
		SELECT id, chat_id, role, content, timestamp
		FROM messages
		WHERE chat_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteRepository) SaveServer(ctx context.Context, server *model.Server) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if server.IsDefault {
		if _, err := tx.ExecContext(ctx, "UPDATE servers SET is_default = 0"); err != nil {
			return fmt.Errorf("could not clear default servers: %w", err)
		}
	}

	query := "INSERT INTO servers (id, name, url, last_connected, is_default) VALUES (?, ?, ?, ?, ?)"
	_, err = tx.ExecContext(ctx, query, server.ID, server.Name, server.URL, server.LastConnected, server.IsDefault)
	if err != nil {
		return fmt.Errorf("could not insert server: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetServers(ctx context.Context) ([]*model.Server, error) {
	query := "SELECT id, name, url, last_connected, is_default FROM servers ORDER BY last_connected DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []*model.Server
	for rows.Next() {
		var srv model.Server
		if err := rows.Scan(&srv.ID, &srv.Name, &srv.URL, &srv.LastConnected, &srv.IsDefault); err != nil {
			return nil, err
		}
		servers = append(servers, &srv)
	}
	return servers, rows.Err()
}

func (r *sqliteRepository) GetDefaultServer(ctx context.Context) (*model.Server, error) {
	query := "SELECT id, name, url, last_connected, is_default FROM servers WHERE is_default = 1"
	row := r.db.QueryRowContext(ctx, query)
	var srv model.Server
	err := row.Scan(&srv.ID, &srv.Name, &srv.URL, &srv.LastConnected, &srv.IsDefault)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &srv, nil
}

func (r *sqliteRepository) UpdateServerConnection(ctx context.Context, serverID string) error {
	query := "UPDATE servers SET last_connected = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), serverID)
	return err
}
