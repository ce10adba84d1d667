package main

import (
	"os"

	"ollama-chat/backend/internal/app"
)

func main() {
	os.Exit(app.Run())
}
