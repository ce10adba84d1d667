package api

import (
	"encoding/json"
	"net/http"

	"ollama-chat/backend/internal/interfaces"
	"ollama-chat/backend/internal/model"
	"ollama-chat/backend/internal/service"
)

// ServerHandler handles HTTP requests for the Ollama server registry.
type ServerHandler struct {
	service interfaces.ServerService
}

func NewServerHandler(svc interfaces.ServerService) *ServerHandler {
	return &ServerHandler{service: svc}
}

// HandleConnect godoc
// @Summary      Connect to an Ollama server
// @Description  Probes the given server and saves it to the registry when reachable.
// @Tags         Servers
// @Accept       json
// @Produce      json
// @Param        connectRequest  body  service.ConnectRequest  true  "Server address"
// @Success      200  {object}  service.ConnectResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /server/connect [post]
func (h *ServerHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	var req service.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	result, err := h.service.Connect(r.Context(), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// HandleListServers godoc
// @Summary      List saved servers
// @Tags         Servers
// @Produce      json
// @Success      200  {array}  model.Server
// @Failure      500  {object}  ErrorResponse
// @Router       /servers [get]
func (h *ServerHandler) HandleListServers(w http.ResponseWriter, r *http.Request) {
	servers, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	if servers == nil {
		servers = []*model.Server{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"servers": servers})
}

// HandleDefaultServer godoc
// @Summary      Get the default server
// @Tags         Servers
// @Produce      json
// @Success      200  {object}  model.Server
// @Failure      404  {object}  ErrorResponse
// @Router       /server/default [get]
func (h *ServerHandler) HandleDefaultServer(w http.ResponseWriter, r *http.Request) {
	server, err := h.service.Default(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, server)
}
