package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configureLogging(os.Stderr)
	app := newApp(ctx, os.Stdin, os.Stdout)
	if err := app.Run(os.Args); err != nil {
		stop()
		log.Fatalf("fatal error: %v", err)
	}
}
