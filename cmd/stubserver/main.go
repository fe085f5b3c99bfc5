// Command stubserver runs the in-memory development backend on a local port.
// It implements the same HTTP surface as the production API so the client
// can be exercised without network access.
package main

import (
	"github.com/joho/godotenv"

	"github.com/appart/appart-client/internal/devserver"
	"github.com/appart/appart-client/internal/pkg/config"
	"github.com/appart/appart-client/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	srv := devserver.New(devserver.Options{
		JWTSecret: cfg.Stub.JWTSecret,
		Log:       log,
		Metrics:   true,
	})

	addr := ":" + cfg.Stub.Port
	log.Info().Str("addr", addr).Msg("stub backend listening")
	if err := srv.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("stub backend stopped")
	}
}
