package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ollama-chat/backend/internal/interfaces"
	"ollama-chat/backend/internal/model"
	"ollama-chat/backend/internal/service"
)

// ChatHandler handles HTTP requests for chat turns and chat management.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// HandleChat godoc
// @Summary      Send a chat message
// @Description  Sends a message to the model and waits for the complete answer.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        chatRequest  body  service.ChatRequest  true  "Chat turn"
// @Success      200  {object}  service.ChatResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req service.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	result, err := h.service.SendMessage(r.Context(), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// HandleStreamChat godoc
// @Summary      Send a chat message with a streamed answer
// @Description  Sends a message and relays the answer as Server-Sent Events while it is generated.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Param        chatRequest  body  service.ChatRequest  true  "Chat turn"
// @Success      200  {object}  model.StreamEvent "Stream of relay frames"
// @Failure      400  {object}  ErrorResponse "Sent as a stream error frame"
// @Router       /chat/stream [post]
func (h *ChatHandler) HandleStreamChat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var req service.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Error decoding stream request body", "error", err)
		sendStreamError(w, "Invalid request body")
		return
	}
	if err := validateRequest(&req); err != nil {
		sendStreamError(w, err.Error())
		return
	}

	events := make(chan model.StreamEvent)
	go h.service.StreamMessage(r.Context(), &req, events)

	for event := range events {
		if r.Context().Err() != nil {
			slog.Info("Client disconnected during chat stream.")
			break
		}
		if err := writeStreamEvent(w, event); err != nil {
			slog.Warn("Could not write to chat stream, client likely disconnected.", "error", err)
			break
		}
	}

	slog.Debug("Finished streaming chat response.")
}

// GetChats godoc
// @Summary      List chats
// @Description  Returns all chats, most recently updated first.
// @Tags         Chat
// @Produce      json
// @Success      200  {array}  model.Chat
// @Failure      500  {object}  ErrorResponse
// @Router       /chats [get]
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.service.ListChats(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	if chats == nil {
		chats = []*model.Chat{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

// GetChat godoc
// @Summary      Get one chat
// @Description  Returns a chat's metadata together with all its messages.
// @Tags         Chat
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {object}  model.FullChat
// @Failure      404  {object}  ErrorResponse
// @Router       /chats/{chatID} [get]
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	fullChat, err := h.service.GetFullChat(r.Context(), chatID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, fullChat)
}

// HandleDeleteChat godoc
// @Summary      Delete a chat
// @Description  Deletes a chat and all its messages.
// @Tags         Chat
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /chats/{chatID} [delete]
func (h *ChatHandler) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := h.service.DeleteChat(r.Context(), chatID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok", Message: "Chat deleted"})
}
