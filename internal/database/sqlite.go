package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// InitDB opens the SQLite database, runs the embedded migrations and seeds
// a default server entry pointing at the configured Ollama URL when the
// registry is empty.
func InitDB(dataSourceName, ollamaURL string) (*sql.DB, error) {
	dir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dataSourceName+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// WAL lets readers proceed while a turn is being persisted.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		slog.Warn("Failed to enable WAL mode for SQLite, continuing without it.", "error", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedDefaultServer(db, ollamaURL); err != nil {
		return nil, fmt.Errorf("failed to seed default server: %w", err)
	}

	return db, nil
}

// runMigrations applies the embedded schema migrations.
func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// seedDefaultServer inserts the local Ollama server as the default registry
// entry if no default exists yet.
func seedDefaultServer(db *sql.DB, ollamaURL string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM servers WHERE is_default = 1").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := db.Exec(
		"INSERT INTO servers (id, name, url, last_connected, is_default) VALUES (?, ?, ?, ?, 1)",
		uuid.NewString(), "Local Ollama Server", ollamaURL, time.Now().UTC(),
	)
	if err == nil {
		slog.Info("Seeded default server entry", "url", ollamaURL)
	}
	return err
}
