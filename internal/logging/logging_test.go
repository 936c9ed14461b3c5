package logging

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Fatalf("expected req-123, got %q", got)
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestNewProductionUsesJSON(t *testing.T) {
	l := New("info", "production")
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected JSON formatter in production, got %T", l.Formatter)
	}
	l2 := New("info", "development")
	if _, ok := l2.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter in development, got %T", l2.Formatter)
	}
}

func TestNewParsesLevel(t *testing.T) {
	l := New("debug", "development")
	if l.GetLevel().String() != "debug" {
		t.Fatalf("expected debug level, got %s", l.GetLevel())
	}
	l2 := New("not-a-level", "development")
	if l2.GetLevel().String() != "info" {
		t.Fatalf("expected fallback to info level, got %s", l2.GetLevel())
	}
}
