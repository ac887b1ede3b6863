// Package logging configures zerolog for xlm and provides context-scoped
// loggers tagged with a per-run trace ID.
package logging

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Unparseable
	// values fall back to info.
	Level string

	// Format is "console" or "json". Console output goes through
	// zerolog.ConsoleWriter for human readability.
	Format string

	// File, when non-empty, is a path that receives a copy of every log
	// line in addition to stderr. The original launcher always keeps a
	// debug log in the temp directory so Steam users can attach it to
	// bug reports.
	File string
}

// Result holds the constructed logger together with the file handle that
// must be closed when the process is done logging.
type Result struct {
	Logger   zerolog.Logger
	FilePath string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *Result) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New builds a logger from cfg. Stderr always receives output; a file is
// attached additionally when cfg.File is set. File open failures are not
// fatal: the logger is still returned, with an empty FilePath.
func New(cfg Config) (*Result, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var console io.Writer = os.Stderr
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	result := &Result{}
	writers := []io.Writer{console}

	if cfg.File != "" {
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open log file %s: %v\n", cfg.File, openErr)
		} else {
			result.file = f
			result.FilePath = cfg.File
			writers = append(writers, f)
		}
	}

	result.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return result, nil
}

// ComponentLogger returns a child logger tagged with a component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// NewTraceID generates a ULID identifying a single xlm run. Every log line
// produced during the run carries it, which makes interleaved launcher and
// game output in the shared log file attributable.
func NewTraceID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // Trace IDs are not security sensitive.
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// WithContext attaches logger (tagged with the trace ID) to ctx.
func WithContext(ctx context.Context, logger zerolog.Logger, traceID string) context.Context {
	tagged := logger.With().Str("trace_id", traceID).Logger()
	return tagged.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger when
// none is attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
