// Package logging builds the logrus logger shared by every minerdeck component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options controls where and how verbosely the logger writes.
type Options struct {
	Level string
	// File is the log destination. Empty means Output (or stderr).
	File   string
	Output io.Writer
	Color  bool
}

// New returns a logger configured from opts. The returned closer releases the
// log file, if one was opened, and is never nil.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     opts.Color,
		DisableColors:   !opts.Color,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}
	log.SetLevel(level)

	var closer io.Closer = nopCloser{}
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, closer, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, closer, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
		closer = f
	case opts.Output != nil:
		log.SetOutput(opts.Output)
	default:
		log.SetOutput(os.Stderr)
	}

	return log, closer, nil
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// parseLevel maps a config level to a logrus level. DEBUG=1 in the
// environment always wins.
func parseLevel(s string) (logrus.Level, error) {
	if os.Getenv("DEBUG") == "1" {
		return logrus.DebugLevel, nil
	}
	if s == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
