package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"educenter/cmd"
	"educenter/internal/config"
	"educenter/internal/logger"
)

func main() {
	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		// Commands report the configuration error themselves
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	l := logger.WithComponent("main")
	l.Debug().Msg("Starting educenter")

	cmd.Execute()
}
