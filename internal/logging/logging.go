// Package logging configures stowr's zerolog logger, following the
// teacher repo's console-writer-in-development / JSON-in-production
// convention.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger at the given level name ("debug", "info",
// "warn", "error"; unrecognized values fall back to "info"). When pretty
// is true, output goes through zerolog's human-readable console writer
// instead of raw JSON lines.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
