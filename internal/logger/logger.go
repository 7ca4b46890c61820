// Package logger configures zerolog for the service.  main calls Configure
// once; components receive a zerolog.Logger (usually via Named) instead of
// reaching for a global.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config represents logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error.  Unknown values mean info.
	Level string
	// Pretty enables zerolog's console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

// Configure sets the global level and returns the root logger.  It also
// replaces zerolog/log.Logger so stray log.Info() calls use the same sink.
func Configure(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	var w io.Writer = cfg.Output
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}
	root := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = root
	return root
}

// ParseLevel maps a textual level onto zerolog's levels.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Named returns a child logger tagged with the component name.
func Named(root zerolog.Logger, component string) zerolog.Logger {
	return root.With().Str("component", component).Logger()
}
