package main

import (
	"io"
	"log/slog"
)

func configureLogging(w io.Writer) {
	var (
		logHandler     slog.Handler
		handlerOptions slog.HandlerOptions
	)

	if EnvDebugLogging.IsUnset() {
		handlerOptions = slog.HandlerOptions{Level: slog.LevelInfo}
	} else {
		handlerOptions = slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}
	}

	if EnvJSONLogging.IsSet() {
		logHandler = slog.NewJSONHandler(w, &handlerOptions)
	} else {
		logHandler = slog.NewTextHandler(w, &handlerOptions)
	}

	slog.SetDefault(slog.New(logHandler))
	slog.Debug("debug logging enabled")
}
