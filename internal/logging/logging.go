// Package logging wraps logrus with the request-correlation conventions
// used throughout the faucet service, mirroring the structured-field
// style the teacher repo used in its faucet and cross-chain HTTP server
// (logger.WithFields(logrus.Fields{...}).Info(...)).
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey int

const requestIDKey ctxKey = iota

// New builds a *logrus.Logger configured for the given level and
// environment. Production environments get JSON output suitable for log
// aggregation; development gets a human-readable text formatter.
func New(level, env string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if strings.EqualFold(env, "production") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// WithRequestID returns a context carrying requestID for later retrieval
// by Entry.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts a request ID previously attached with
// WithRequestID, returning "" if none is present.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// Entry returns a logrus.Entry pre-populated with the request ID carried
// in ctx, ready for component-level event logging.
func Entry(logger *logrus.Logger, ctx context.Context) *logrus.Entry {
	return logger.WithField("request_id", RequestIDFromContext(ctx))
}

// Event kinds for the `event` log field. Only cache.degraded (on cache
// failover) and storage.degraded (on degraded-store construction) are
// emitted, and those call sites write the string directly.
const (
	EventAdmissionDenied  = "admission.denied"
	EventDispatchSuccess  = "dispatch.success"
	EventDispatchFailed   = "dispatch.failed"
	EventCacheDegraded    = "cache.degraded"
	EventStorageDegraded  = "storage.degraded"
	EventAdminLogin       = "admin.login"
	EventClientRegistered = "client.registered"
)
