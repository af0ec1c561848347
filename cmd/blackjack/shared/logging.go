package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// SetupLogger configures zerolog with pretty console output at level.
// Unknown levels fall back to info.
func SetupLogger(level string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

// SetupCharmLogger returns the logger used by the simulator and the
// terminal UI. A nil writer discards output.
func SetupCharmLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	l, err := log.ParseLevel(level)
	if err != nil {
		l = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{Level: l, ReportTimestamp: true})
}
