// Command server starts the session and content gateway HTTP server.
//
// Configuration is read from CONFIG_PATH (YAML) with environment variable
// overrides; see internal/config.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/najubudeen/vanturalog/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
