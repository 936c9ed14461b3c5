package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleFaucetRequestHappyPath(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"digest":"0xabc"}`))
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, upstream.URL)
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/faucet/request",
		`{"walletAddress":"`+testAddr+`"}`,
		map[string]string{"Content-Type": "application/json", "X-API-Key": "legacy-master-key"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"0xabc"`) {
		t.Fatalf("expected tx hash in response, got %s", rec.Body.String())
	}
}

func TestHandleFaucetRequestMissingAPIKey(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/faucet/request",
		`{"walletAddress":"`+testAddr+`"}`, map[string]string{"Content-Type": "application/json"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleFaucetRequestInvalidAddress(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/faucet/request",
		`{"walletAddress":"not-an-address"}`,
		map[string]string{"Content-Type": "application/json", "X-API-Key": "legacy-master-key"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleFaucetRequestSecondCallHitsCooldown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"digest":"0xabc"}`))
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, upstream.URL)
	r := srv.Router()
	headers := map[string]string{"Content-Type": "application/json", "X-API-Key": "legacy-master-key"}
	body := `{"walletAddress":"` + testAddr + `"}`

	first := doJSON(t, r, http.MethodPost, "/api/v1/faucet/request", body, headers)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d: %s", first.Code, first.Body.String())
	}

	second := doJSON(t, r, http.MethodPost, "/api/v1/faucet/request", body, headers)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d: %s", second.Code, second.Body.String())
	}
}

func TestHandleFaucetModeRequiresCredential(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/faucet/mode", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/faucet/mode", "",
		map[string]string{"X-API-Key": "legacy-master-key"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with credential, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleFaucetStatusIsPublic(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/faucet/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
