// Package logging sets up logrus loggers for the node API subsystems.
package logging

import (
	"context"
	"fmt"
	"io"
	"path"
	"runtime"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service is the service field attached to every logger.
const Service = "nodeapi"

// None disables a subsystem's output.
const None = "none"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sourceKey
)

// Formatter is the formatter shared by every logger.
var Formatter = &formatter.Formatter{
	TimestampFormat: "2006-01-02 15:04:05",
	HideKeys:        true,
	FieldsOrder:     []string{"src", "req-id", "service", "subsystem", "endpoint"},
	CallerFirst:     true,
	CustomCallerFormatter: func(f *runtime.Frame) string {
		return fmt.Sprintf(" [%s %s():%d]", path.Base(f.File), f.Function, f.Line)
	},
}

// Setup builds the logger of one subsystem at the given level. An empty
// or unparsable level falls back to the global logrus level; None
// discards everything.
func Setup(level, subsystem string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(Formatter)
	entry := logger.WithFields(logrus.Fields{
		"service":   Service,
		"subsystem": subsystem,
	})

	if level == None {
		logger.SetOutput(io.Discard)
		return entry
	}

	lvl := logrus.GetLevel()
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			entry.Warnf("invalid log level '%s', defaulting to '%s'", level, lvl)
		} else {
			lvl = parsed
		}
	}
	logger.SetLevel(lvl)
	entry.Debugf("log level set to '%s'", lvl)
	return entry
}

// Discard returns a logger that writes nothing, for tests and library
// callers that pass no logger.
func Discard() *logrus.Entry {
	return Setup(None, "discard")
}

// WithRequestID returns a context carrying a request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithSource returns a context naming the transport a request came in
// on, such as "http" or "grpc".
func WithSource(ctx context.Context, src string) context.Context {
	return context.WithValue(ctx, sourceKey, src)
}

// RequestID returns the request ID carried by ctx, if any.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// NewRequestID returns a fresh request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequest annotates logger with the source and request ID carried
// by ctx. Requests without an ID get an "unset." one so log lines can
// still be correlated.
func WithRequest(ctx context.Context, logger *logrus.Entry) *logrus.Entry {
	if src, ok := ctx.Value(sourceKey).(string); ok {
		logger = logger.WithField("src", src)
	}
	if id, ok := RequestID(ctx); ok {
		return logger.WithField("req-id", id)
	}
	return logger.WithField("req-id", "unset."+uuid.NewString())
}
