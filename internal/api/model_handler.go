package api

import (
	"net/http"
	"time"

	"ollama-chat/backend/internal/interfaces"
)

// appVersion is reported by the health endpoint.
const appVersion = "1.0.0"

// ModelHandler handles HTTP requests for model metadata and health.
type ModelHandler struct {
	service interfaces.ModelService
}

func NewModelHandler(svc interfaces.ModelService) *ModelHandler {
	return &ModelHandler{service: svc}
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status            string  `json:"status"`
	Timestamp         float64 `json:"timestamp"`
	Version           string  `json:"version"`
	UpstreamConnected bool    `json:"upstream_connected"`
}

// HandleHealth godoc
// @Summary      Health check
// @Description  Reports backend liveness and upstream Ollama reachability.
// @Tags         System
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *ModelHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, HealthResponse{
		Status:            "online",
		Timestamp:         float64(time.Now().UnixMilli()) / 1000,
		Version:           appVersion,
		UpstreamConnected: h.service.Health(r.Context()),
	})
}

// HandleListModels godoc
// @Summary      List available models
// @Description  Gets the models installed on the Ollama server. Served from a TTL cache unless force_refresh=true.
// @Tags         Models
// @Produce      json
// @Param        force_refresh  query  bool  false  "Bypass the cache"
// @Success      200  {object}  llm.ListModelsResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /models [get]
func (h *ModelHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	forceRefresh := r.URL.Query().Get("force_refresh") == "true"

	models, err := h.service.List(r.Context(), forceRefresh)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models)
}
