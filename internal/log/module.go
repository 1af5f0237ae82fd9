package log

import (
	"io"
	"os"
	"time"

	"github.com/ipfans/fxlogger"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// NewLogger creates a configured zerolog.Logger instance
func NewLogger() zerolog.Logger {
	return NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates the same logger writing to w.
func NewLoggerTo(w io.Writer) zerolog.Logger {
	logWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if os.Getenv("DEBUG") == "true" {
		level = zerolog.DebugLevel
	}

	return zerolog.New(logWriter).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Module provides the application logger and routes fx's own event log through it.
func Module() fx.Option {
	return ModuleTo(os.Stdout)
}

// ModuleTo is Module with logs written to w, for commands that own stdout.
func ModuleTo(w io.Writer) fx.Option {
	logger := NewLoggerTo(w)

	return fx.Options(
		fx.WithLogger(fxlogger.WithZerolog(logger)),
		fx.Module(
			"log",
			fx.Supply(logger),
		),
	)
}
