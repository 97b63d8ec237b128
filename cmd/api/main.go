package main

import (
	"log"
	"os"

	"github.com/Egham-7/llmonitor-api/internal/config"
	pkgconfig "github.com/Egham-7/llmonitor-api/pkg/config"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	// Load environment files explicitly
	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	configPath := "config.yaml"
	if path := os.Getenv("LLMONITOR_CONFIG"); path != "" {
		configPath = path
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	server := pkgconfig.NewServer(cfg)

	log.Println("Starting llmonitor API server...")
	if err := server.Run(); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}
