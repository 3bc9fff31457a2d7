// Package logging builds the zerolog loggers used by every Caseflow binary.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a JSON logger tagged with the service name. The level comes
// from the LOG_LEVEL environment variable and defaults to info.
func New(service string) zerolog.Logger {
	return NewWithLevel(service, os.Getenv("LOG_LEVEL"))
}

// NewWithLevel is New with an explicit level string (debug, info, warn, error).
func NewWithLevel(service, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}
	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
