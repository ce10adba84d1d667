package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"ollama-chat/backend/internal/api"
	"ollama-chat/backend/internal/config"
	"ollama-chat/backend/internal/database"
	"ollama-chat/backend/internal/llm"
	"ollama-chat/backend/internal/qr"
	"ollama-chat/backend/internal/repository"
	"ollama-chat/backend/internal/service"
)

// defaultUpstreamPort is the standard Ollama port, advertised in the server
// connection QR code.
const defaultUpstreamPort = 11434

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	repo, cleanup, err := setupStorage(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.StorageBackend, "error", err)
		return 1
	}
	defer cleanup()

	provider := llm.NewClient(cfg.OllamaURL, cfg.ModelCacheTTL)

	chatService := service.NewChatService(repo, provider, cfg.DefaultModel)
	modelService := service.NewModelService(provider)
	serverService := service.NewServerService(repo, func(baseURL string) llm.Provider {
		return llm.NewClient(baseURL, cfg.ModelCacheTTL)
	})
	qrGenerator := qr.NewGenerator(cfg.LocalIP, cfg.AppPort, defaultUpstreamPort)

	chatHandler := api.NewChatHandler(chatService)
	modelHandler := api.NewModelHandler(modelService)
	serverHandler := api.NewServerHandler(serverService)
	qrHandler := api.NewQRHandler(qrGenerator)
	router := api.NewRouter(chatHandler, modelHandler, serverHandler, qrHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.AppPort, "storage", cfg.StorageBackend, "upstream", cfg.OllamaURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

// setupStorage opens the configured storage backend and returns a repository
// plus a cleanup function for the underlying connection.
func setupStorage(cfg *config.Config) (repository.Repository, func(), error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("Successfully connected to Redis.", "addr", cfg.RedisAddr)

		cleanup := func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close Redis connection", "error", err)
			}
		}
		return repository.NewRedisRepository(rdb), cleanup, nil

	case "sqlite":
		db, err := database.InitDB(cfg.DatabasePath, cfg.OllamaURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)

		cleanup := func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}
		return repository.NewSQLiteRepository(db), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
