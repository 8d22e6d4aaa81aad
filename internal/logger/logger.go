// Package logger builds the application's slog.Logger for each environment
// and holds small attribute helpers shared by every package.
package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Setup returns a logger suited to env: colored text for local work, JSON at
// debug level for dev and JSON at info level for prod.  Unknown environments
// (tests included) get the prod configuration.
func Setup(env string) *slog.Logger {
	return setup(env, os.Stdout)
}

func setup(env string, w io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
		return slog.New(opts.NewPrettyHandler(w))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Err wraps an error as a slog attribute under the "error" key.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Discard is a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
