package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/imrenagi/go-movie-api/server"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the logger
	_ = server.InitializeLogger(envOrDefault("LOG_LEVEL", "debug"))

	server := server.New(server.Opts{
		Addr:         envOrDefault("MOVIE_API_ADDR", server.DefaultAddr),
		ServiceName:  envOrDefault("SERVICE_NAME", server.DefaultServiceName),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	})
	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run the server")
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
