package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level  string    // debug, info, warn, error
	Pretty bool      // Enable pretty console output
	Output io.Writer // Defaults to stderr; stdout carries the report
}

// ParseLevel maps a level name to a zerolog level; unknown names mean warn
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.WarnLevel
}

// New creates a new structured logger
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// Adapter lets the engines write to a zerolog logger
type Adapter struct {
	Logger zerolog.Logger
}

var _ calculation.Logger = Adapter{}

// NewAdapter wraps a zerolog logger
func NewAdapter(l zerolog.Logger) Adapter {
	return Adapter{Logger: l}
}

func (a Adapter) Debugf(format string, args ...interface{}) { a.Logger.Debug().Msgf(format, args...) }
func (a Adapter) Infof(format string, args ...interface{})  { a.Logger.Info().Msgf(format, args...) }
func (a Adapter) Warnf(format string, args ...interface{})  { a.Logger.Warn().Msgf(format, args...) }
func (a Adapter) Errorf(format string, args ...interface{}) { a.Logger.Error().Msgf(format, args...) }
