package api

import (
	"net/http"
	"os"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "ollama-chat/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a chi router with all the application's
// routes.
func NewRouter(chatHandler *ChatHandler, modelHandler *ModelHandler, serverHandler *ServerHandler, qrHandler *QRHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Swagger UI for the generated API documentation.
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {

		// Standard JSON routes get a request timeout so client
		// connections cannot hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/health", modelHandler.HandleHealth)
			r.Get("/models", modelHandler.HandleListModels)

			r.Post("/chat", chatHandler.HandleChat)
			r.Get("/chats", chatHandler.GetChats)
			r.Get("/chats/{chatID}", chatHandler.GetChat)
			r.Delete("/chats/{chatID}", chatHandler.HandleDeleteChat)

			r.Get("/qrcode/server", qrHandler.HandleServerQR)
			r.Post("/qrcode/server", qrHandler.HandleServerQR)
			r.Get("/qrcode/backend", qrHandler.HandleBackendQR)
			r.Post("/qrcode/backend", qrHandler.HandleBackendQR)

			r.Post("/server/connect", serverHandler.HandleConnect)
			r.Get("/servers", serverHandler.HandleListServers)
			r.Get("/server/default", serverHandler.HandleDefaultServer)
		})

		// The streaming endpoint must not have a timeout; it holds the
		// connection open while the answer is generated.
		r.Group(func(r chi.Router) {
			r.Post("/chat/stream", chatHandler.HandleStreamChat)
		})
	})

	// Static frontend files, when present. Without a frontend the root
	// serves a small info document instead.
	if _, err := os.Stat("./static/index.html"); err == nil {
		fileServer := http.FileServer(http.Dir("./static"))
		r.Handle("/*", http.StripPrefix("/", fileServer))
	} else {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			respondWithJSON(w, http.StatusOK, map[string]string{
				"name":    "ollama-chat backend",
				"version": appVersion,
				"api":     "/api",
				"docs":    "/api/swagger/index.html",
			})
		})
	}

	return r
}
