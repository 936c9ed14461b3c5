package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestHandleRegisterClientAndGet(t *testing.T) {
	srv, _ := newTestServerWithSQL(t)
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/clients/register",
		`{"name":"example-dapp"}`, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object data, got %T", env.Data)
	}
	clientID, _ := data["clientId"].(string)
	if clientID == "" {
		t.Fatalf("expected a clientId in the response")
	}

	getRec := doJSON(t, r, http.MethodGet, "/api/v1/clients/"+clientID, "", nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching registered client, got %d: %s", getRec.Code, getRec.Body.String())
	}
	if jsonContains(getRec.Body.String(), "apiKey") {
		t.Fatalf("expected apiKey to never be echoed back by GET, got %s", getRec.Body.String())
	}
}

func TestHandleRegisterClientRejectsEmptyName(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/clients/register",
		`{"name":""}`, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGetClientUnknownID(t *testing.T) {
	srv, _ := newTestServer(t, "")
	r := srv.Router()

	rec := doJSON(t, r, http.MethodGet, "/api/v1/clients/does-not-exist", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func jsonContains(body, field string) bool {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return false
	}
	data, ok := m["data"].(map[string]interface{})
	if !ok {
		return false
	}
	_, found := data[field]
	return found
}
