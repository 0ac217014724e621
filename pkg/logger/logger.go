package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the record encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type options struct {
	writer     io.Writer
	format     Format
	extractors []ContextExtractor
	level      slog.Level
}

// Option configures New and NewWithSentry.
type Option func(*options)

func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

func WithExtractors(ex ...ContextExtractor) Option {
	return func(o *options) { o.extractors = append(o.extractors, ex...) }
}

func newOptions(opts []Option) *options {
	o := &options{writer: os.Stdout, format: FormatJSON, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: o.level}
	if o.format == FormatText {
		return slog.NewTextHandler(o.writer, ho)
	}
	return slog.NewJSONHandler(o.writer, ho)
}

// New returns a logger writing to stdout in JSON at info level by default.
func New(opts ...Option) *slog.Logger {
	o := newOptions(opts)
	return slog.New(decorate(o.handler(), o.extractors))
}

// NewNope returns a logger that discards every record.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
