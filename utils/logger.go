package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger: human-readable in development, JSON otherwise.
func NewLogger(env string) zerolog.Logger {
	return newLogger(env, nil)
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "development" {
		if out == nil {
			out = os.Stderr
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	if out == nil {
		out = os.Stdout
	}
	level := zerolog.InfoLevel
	if env == "test" {
		level = zerolog.Disabled
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
