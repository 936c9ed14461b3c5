package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"
)

func adminToken(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/login",
		`{"username":"root","password":"hunter22222222222222"}`,
		map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	data := env.Data.(map[string]interface{})
	return data["token"].(string)
}

func TestHandleAdminLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/login",
		`{"username":"root","password":"wrong"}`,
		map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/admin/dashboard", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminDashboardWithValidToken(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()
	token := adminToken(t, r)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/admin/dashboard", "",
		map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminLogoutRevokesToken(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()
	token := adminToken(t, r)
	auth := map[string]string{"Authorization": "Bearer " + token}

	logoutRec := doJSON(t, r, http.MethodPost, "/api/v1/admin/logout", "", auth)
	if logoutRec.Code != http.StatusOK {
		t.Fatalf("expected logout to succeed, got %d: %s", logoutRec.Code, logoutRec.Body.String())
	}

	rec := doJSON(t, r, http.MethodGet, "/api/v1/admin/dashboard", "", auth)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleBulkSettingsUpdatePartialSuccess(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()
	token := adminToken(t, r)

	rec := doJSON(t, r, http.MethodPut, "/api/v1/admin/rate-limits/bulk",
		`{"settings":{"faucet_mode":"sdk","not_a_real_field":"x"}}`,
		map[string]string{"Content-Type": "application/json", "Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data := env.Data.(map[string]interface{})
	updated, _ := data["updated"].([]interface{})
	errs, _ := data["errors"].([]interface{})
	if len(updated) != 1 {
		t.Fatalf("expected exactly one accepted setting, got %+v", updated)
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one rejected setting, got %+v", errs)
	}
}

func TestHandleRateLimitSettingsReturnsDefaults(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()
	token := adminToken(t, r)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/admin/rate-limits", "",
		map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	values := env.Data.(map[string]interface{})
	if values["faucet_mode"] != "wallet" {
		t.Fatalf("expected default faucet_mode=wallet, got %v", values["faucet_mode"])
	}
}

func TestHandleCacheFlush(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()
	token := adminToken(t, r)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/cache/flush", "",
		map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
