// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the research service's structured logger.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to w at the named level. Unknown level
// names fall back to info.
func New(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableQuote:    true,
	})
	return log
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type ctxKey struct{}

// WithEntry returns a copy of ctx carrying entry.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the entry stored by WithEntry, or an entry on the
// standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if e, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
