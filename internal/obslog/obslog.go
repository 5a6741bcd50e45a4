// Package obslog builds the structured logger every ambient component in
// this module writes through: zerolog to stderr, optionally fanned out to a
// Graylog GELF endpoint.
package obslog

import (
	"fmt"
	"io"
	"os"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Level string

	GraylogEnabled bool
	GraylogAddress string
}

// New builds a zerolog.Logger writing to stderr and, if enabled, to a
// Graylog GELF UDP endpoint. The returned closer must be called on
// shutdown; it is a no-op when Graylog is disabled.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("obslog: parsing level %q: %w", opts.Level, err)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	closer := func() error { return nil }

	if opts.GraylogEnabled {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("obslog: connecting to graylog at %q: %w", opts.GraylogAddress, err)
		}
		writers = append(writers, gw)
		closer = gw.Close
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	return logger, closer, nil
}
