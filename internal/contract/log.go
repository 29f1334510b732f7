package contract

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	Level(zerolog.WarnLevel).
	With().
	Timestamp().
	Logger()

// InitLogger configures the process logger. Unknown levels fall back to warn.
func InitLogger(level string, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	if out == nil {
		out = os.Stderr
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: !IsTerminal(out)}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Logger returns the process logger.
func Logger() *zerolog.Logger {
	return &logger
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.Fatal().Err(err).Msg(msg)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	logger.Warn().Err(err).Msg(msg)
}
