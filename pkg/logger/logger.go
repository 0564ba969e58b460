// Package logger builds the zerolog loggers used by the yamdb binaries.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultMaxSizeMB = 100

type Options struct {
	// Service is attached to every entry as the "service" field.
	Service string
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches the primary sink to zerolog's console format.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	File   File
}

// File enables a size-rotated JSON copy of the log when Path is set.
type File struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger for opts and makes its level the global minimum.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(sink(opts)).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Caller().Logger()
}

// Bootstrap is the logger used before configuration has loaded.
func Bootstrap(service string) zerolog.Logger {
	return New(Options{Service: service, Output: os.Stderr})
}

func sink(opts Options) io.Writer {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if opts.File.Path == "" {
		return out
	}
	return zerolog.MultiLevelWriter(out, rotating(opts.File))
}

func rotating(f File) *lumberjack.Logger {
	size := f.MaxSizeMB
	if size <= 0 {
		size = defaultMaxSizeMB
	}
	age := f.MaxAgeDays
	if age <= 0 {
		age = 30
	}
	return &lumberjack.Logger{
		Filename:   f.Path,
		MaxSize:    size,
		MaxBackups: f.MaxBackups,
		MaxAge:     age,
		Compress:   true,
	}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}
