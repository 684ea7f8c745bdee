package main

import (
	"os"

	"github.com/yigit/skilltrack/internal/bootstrap"
	"github.com/yigit/skilltrack/internal/pkg/logger"
	"github.com/yigit/skilltrack/internal/server"
)

func main() {
	srv, err := server.NewServer(bootstrap.ConfigPath())
	if err != nil {
		// Use the default logger setup by the logger package's init
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run the server (this blocks until shutdown signal)
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
