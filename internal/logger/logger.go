package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger writing to out.
//   - level: trace, debug, info, warn, error, fatal, panic (unknown falls back to info)
//   - format: "json" for production, "pretty" for a console writer
func New(out io.Writer, level, format string) zerolog.Logger {
	writer := out
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
