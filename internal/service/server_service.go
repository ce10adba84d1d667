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

// ProviderFactory builds a Provider for a base URL. A client's base URL is
// immutable, so probing a candidate server needs a fresh instance.
type ProviderFactory func(baseURL string) llm.Provider

// ServerService manages the registry of known Ollama servers.
type ServerService struct {
	repo        repository.Repository
	newProvider ProviderFactory
}

func NewServerService(repo repository.Repository, factory ProviderFactory) *ServerService {
	return &ServerService{repo: repo, newProvider: factory}
}

// ConnectRequest asks to probe and register an Ollama server.
type ConnectRequest struct {
	Name      string `json:"name" validate:"required"`
	IP        string `json:"ip" validate:"required"`
	Port      int    `json:"port" validate:"required,min=1,max=65535"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// ConnectResult reports a successful registration: the stored server id and
// the models the probe found.
type ConnectResult struct {
	ServerID string                  `json:"server_id"`
	Models   *llm.ListModelsResponse `json:"models"`
}

// Connect probes the candidate server with a fresh client and saves it only
// when the probe succeeds. A failed probe leaves the registry untouched.
func (s *ServerService) Connect(ctx context.Context, req *ConnectRequest) (*ConnectResult, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.IP) == "" || req.Port == 0 {
		return nil, fmt.Errorf("%w: name, ip and port are required", apperrors.ErrValidation)
	}

	url := fmt.Sprintf("http://%s:%d", req.IP, req.Port)
	probe := s.newProvider(url)
	models, err := probe.ListModels(ctx, true)
	if err != nil {
		return nil, err
	}

	server := &model.Server{
		ID:            uuid.NewString(),
		Name:          req.Name,
		URL:           url,
		LastConnected: time.Now().UTC(),
		IsDefault:     req.IsDefault,
	}
	if err := s.repo.SaveServer(ctx, server); err != nil {
		return nil, fmt.Errorf("%w: could not save server: %v", apperrors.ErrPersistence, err)
	}
	slog.Info("Registered Ollama server", "name", server.Name, "url", server.URL, "default", server.IsDefault)

	return &ConnectResult{ServerID: server.ID, Models: models}, nil
}

// List returns all saved servers, most recently connected first.
func (s *ServerService) List(ctx context.Context) ([]*model.Server, error) {
	return s.repo.GetServers(ctx)
}

// Default returns the default server.
func (s *ServerService) Default(ctx context.Context) (*model.Server, error) {
	server, err := s.repo.GetDefaultServer(ctx)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: no default server configured", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return server, nil
}

// Touch refreshes a server's last-connected timestamp.
func (s *ServerService) Touch(ctx context.Context, serverID string) error {
	return s.repo.UpdateServerConnection(ctx, serverID)
}
