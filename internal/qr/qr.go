package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload types understood by the mobile client.
const (
	TypeServer  = "ollama_server"
	TypeBackend = "ollama_backend"
)

const imageSize = 256

// Payload is the connection data embedded in a QR code.
type Payload struct {
	Type string `json:"type"`
	Name string `json:"name"`
	IP   string `json:"ip"`
	Port string `json:"port"`
}

// Generator builds connection QR codes for this backend and its upstream
// Ollama server.
type Generator struct {
	localIP      string
	backendPort  int
	upstreamPort int
}

func NewGenerator(localIP string, backendPort, upstreamPort int) *Generator {
	return &Generator{localIP: localIP, backendPort: backendPort, upstreamPort: upstreamPort}
}

// ServerCode generates a QR code for connecting straight to the Ollama
// server. Empty name/ip fall back to the configured local address.
func (g *Generator) ServerCode(name, ip string) (string, Payload, error) {
	if ip == "" {
		ip = g.localIP
	}
	if name == "" {
		name = fmt.Sprintf("Ollama Server (%s)", ip)
	}
	payload := Payload{Type: TypeServer, Name: name, IP: ip, Port: strconv.Itoa(g.upstreamPort)}
	img, err := encode(payload)
	return img, payload, err
}

// BackendCode generates a QR code for connecting to this backend.
func (g *Generator) BackendCode(name, ip string) (string, Payload, error) {
	if ip == "" {
		ip = g.localIP
	}
	if name == "" {
		name = fmt.Sprintf("Ollama Backend (%s)", ip)
	}
	payload := Payload{Type: TypeBackend, Name: name, IP: ip, Port: strconv.Itoa(g.backendPort)}
	img, err := encode(payload)
	return img, payload, err
}

// encode renders the payload as a PNG data URI.
func encode(payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("could not marshal QR payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.High, imageSize)
	if err != nil {
		return "", fmt.Errorf("could not generate QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Verify reports whether a scanned payload is one of ours: a known type, an
// address, and a numeric port.
func Verify(payload Payload) bool {
	if payload.Type != TypeServer && payload.Type != TypeBackend {
		return false
	}
	if payload.IP == "" {
		return false
	}
	if _, err := strconv.Atoi(payload.Port); err != nil {
		return false
	}
	return true
}
