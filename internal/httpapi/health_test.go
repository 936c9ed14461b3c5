package httpapi

import (
	"net/http"
	"testing"
)

func TestHandleLive(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/health/live", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleReadyReportsNotReadyBeforeInitialize(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/health/ready", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before Initialize, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleKeepalive(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/keepalive", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleStatusPage(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
