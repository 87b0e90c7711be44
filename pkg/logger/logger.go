package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// New creates a logger at info level. Development writes human-readable
// console output; the "test" environment discards everything.
func New(serviceName string, environment string) *Logger {
	return NewWithLevel(serviceName, environment, "")
}

// NewWithLevel is New with an explicit level name such as "debug" or
// "warn". Unknown or empty names mean info.
func NewWithLevel(serviceName, environment, level string) *Logger {
	var output io.Writer = os.Stdout

	switch environment {
	case "development":
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	case "test":
		output = io.Discard
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{Logger: logger}
}

// WithComponent returns a logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithEmployee returns a logger with the employee ID attached
func (l *Logger) WithEmployee(employeeID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("employee_id", employeeID).Logger(),
	}
}
