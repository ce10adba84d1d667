package service

import (
	"context"

	"ollama-chat/backend/internal/llm"
)

// ModelService handles the business logic for model metadata.
type ModelService struct {
	llm llm.Provider
}

func NewModelService(provider llm.Provider) *ModelService {
	return &ModelService{llm: provider}
}

// List returns the installed models, served from the provider's TTL cache
// unless forceRefresh is set.
func (s *ModelService) List(ctx context.Context, forceRefresh bool) (*llm.ListModelsResponse, error) {
	return s.llm.ListModels(ctx, forceRefresh)
}

// Health reports whether the upstream inference server is reachable.
func (s *ModelService) Health(ctx context.Context) bool {
	return s.llm.Health(ctx)
}
