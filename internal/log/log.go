// Package log constructs the application logger. Core packages return
// typed errors and never log themselves; logging happens at the CLI and
// HTTP boundaries with the logger built here.
package log

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds a zerolog logger at the given level. Unknown levels fall back
// to info. With pretty set, output goes through the human-readable console
// writer instead of raw JSON.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
