package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suifx/faucet/internal/admin"
	"github.com/suifx/faucet/internal/admission"
	"github.com/suifx/faucet/internal/cache"
	"github.com/suifx/faucet/internal/chain"
	"github.com/suifx/faucet/internal/clients"
	"github.com/suifx/faucet/internal/config"
	"github.com/suifx/faucet/internal/storage"
)

const testAddr = "0000000000000000000000000000000000000000000000000000000000000001"

// newTestServer wires a Server against an in-memory cache, a degraded
// (no-DB) store, and an SDK-mode dispatcher pointed at sdkURL (a
// httptest server standing in for the upstream faucet). sdkURL == ""
// leaves the dispatcher without a reachable upstream, useful for
// handlers that never call SendTokens.
func newTestServer(t *testing.T, sdkURL string) (*Server, storage.Store) {
	t.Helper()

	cfg := &config.Config{
		Env:          "development",
		APIKey:       "legacy-master-key",
		JWTSecret:    []byte("test-secret-at-least-32-bytes!!"),
		Network:      config.NetworkTestnet,
		DefaultAmount: 100_000_000,
		MaxAmount:     1_000_000_000,
		RateWindowMS:  3_600_000,
		MaxPerWallet:  5,
		MaxPerIP:      10,
		MaxPerGlobal:  1000,
		HTTPPort:      "8080",
		CORSOrigin:    "*",
	}

	cacheStore := cache.NewMemoryStore(cache.DefaultKeyPrefix, time.Second)
	store := storage.NewDegradedStore(nil, nil)

	dispatcher := chain.NewDispatcher(nil, nil, store, sdkURL, cfg.MaxAmount, nil)
	pipeline := admission.NewPipeline(cacheStore, store, dispatcher, cfg, nil)
	registry := clients.NewRegistry(store, "sfx", "sfx")
	sessions := admin.NewSessionManager(cfg.JWTSecret, cfg.APIKey, "")

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewServer(cfg, log, pipeline, dispatcher, cacheStore, store, registry, sessions), store
}

// newTestServerWithSQL is like newTestServer but backs the Server with a
// real in-memory SQLStore, for handlers that round-trip through
// persistence (client registration lookup, admin login/dashboard).
func newTestServerWithSQL(t *testing.T) (*Server, *storage.SQLStore) {
	t.Helper()

	store, err := storage.NewSQLStore("sqlite://file::memory:?cache=shared", "root", "hunter22222222222222", nil)
	if err != nil {
		t.Fatalf("NewSQLStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		Env:           "development",
		APIKey:        "legacy-master-key",
		JWTSecret:     []byte("test-secret-at-least-32-bytes!!"),
		Network:       config.NetworkTestnet,
		DefaultAmount: 100_000_000,
		MaxAmount:     1_000_000_000,
		RateWindowMS:  3_600_000,
		MaxPerWallet:  5,
		MaxPerIP:      10,
		MaxPerGlobal:  1000,
		HTTPPort:      "8080",
		CORSOrigin:    "*",
	}

	cacheStore := cache.NewMemoryStore(cache.DefaultKeyPrefix, time.Second)
	dispatcher := chain.NewDispatcher(nil, nil, store, "", cfg.MaxAmount, nil)
	pipeline := admission.NewPipeline(cacheStore, store, dispatcher, cfg, nil)
	registry := clients.NewRegistry(store, "sfx", "sfx")
	sessions := admin.NewSessionManager(cfg.JWTSecret, cfg.APIKey, "")

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewServer(cfg, log, pipeline, dispatcher, cacheStore, store, registry, sessions), store
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
