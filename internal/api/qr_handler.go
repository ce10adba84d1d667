package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ollama-chat/backend/internal/qr"
)

// QRHandler handles the connection QR code endpoints.
type QRHandler struct {
	generator *qr.Generator
}

func NewQRHandler(generator *qr.Generator) *QRHandler {
	return &QRHandler{generator: generator}
}

// QRResponse carries a rendered QR code and the payload it encodes.
type QRResponse struct {
	QRCode string     `json:"qrcode"`
	Server qr.Payload `json:"server"`
}

type qrRequest struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// Both QR endpoints accept GET query parameters or a POST JSON body.
func qrParams(r *http.Request) qrRequest {
	if r.Method == http.MethodGet {
		return qrRequest{Name: r.URL.Query().Get("name"), IP: r.URL.Query().Get("ip")}
	}
	var req qrRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An empty or malformed body just means defaults.
		return qrRequest{}
	}
	return req
}

// HandleServerQR godoc
// @Summary      QR code for the Ollama server
// @Description  Generates a connection QR code for the upstream Ollama server as a base64 PNG data URI.
// @Tags         QR
// @Produce      json
// @Param        name  query  string  false  "Server name"
// @Param        ip    query  string  false  "Server IP"
// @Success      200  {object}  QRResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /qrcode/server [get]
func (h *QRHandler) HandleServerQR(w http.ResponseWriter, r *http.Request) {
	req := qrParams(r)
	code, payload, err := h.generator.ServerCode(req.Name, req.IP)
	if err != nil {
		slog.Error("QR code generation failed", "error", err)
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, QRResponse{QRCode: code, Server: payload})
}

// HandleBackendQR godoc
// @Summary      QR code for this backend
// @Description  Generates a connection QR code for this backend as a base64 PNG data URI.
// @Tags         QR
// @Produce      json
// @Param        name  query  string  false  "Server name"
// @Param        ip    query  string  false  "Server IP"
// @Success      200  {object}  QRResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /qrcode/backend [get]
func (h *QRHandler) HandleBackendQR(w http.ResponseWriter, r *http.Request) {
	req := qrParams(r)
	code, payload, err := h.generator.BackendCode(req.Name, req.IP)
	if err != nil {
		slog.Error("QR code generation failed", "error", err)
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, QRResponse{QRCode: code, Server: payload})
}
