package admission

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/suifx/faucet/internal/cache"
	"github.com/suifx/faucet/internal/chain"
	"github.com/suifx/faucet/internal/config"
	"github.com/suifx/faucet/internal/storage"
)

const testWallet = "0000000000000000000000000000000000000000000000000000000000000001"

// trackingStore embeds the degraded no-op store and overrides just the
// methods these tests need to assert against, rather than hand-rolling
// every Store method.
type trackingStore struct {
	*storage.DegradedStore
	settings      map[string]string
	clients       map[string]*storage.ApiClient
	savedTxns     []storage.TransactionRecord
	metricsDeltas []storage.MetricsDelta
}

func newTrackingStore() *trackingStore {
	return &trackingStore{
		DegradedStore: storage.NewDegradedStore(nil, nil),
		settings:      map[string]string{},
		clients:       map[string]*storage.ApiClient{},
	}
}

func (s *trackingStore) ReadSetting(ctx context.Context, name string) (string, bool) {
	v, ok := s.settings[name]
	return v, ok
}

func (s *trackingStore) FindApiClientByKey(ctx context.Context, apiKey string) (*storage.ApiClient, error) {
	for _, c := range s.clients {
		if c.APIKey == apiKey {
			return c, nil
		}
	}
	return nil, nil
}

func (s *trackingStore) SaveTransaction(ctx context.Context, rec *storage.TransactionRecord) error {
	s.savedTxns = append(s.savedTxns, *rec)
	return nil
}

func (s *trackingStore) UpsertDailyMetrics(ctx context.Context, date string, delta storage.MetricsDelta) error {
	s.metricsDeltas = append(s.metricsDeltas, delta)
	return nil
}

func (s *trackingStore) RecordClientUsage(ctx context.Context, clientID, endpoint, method string, status int, responseTimeMs int64) {
}

type fakeRPC struct {
	balance int64
	effects chain.TxEffects
}

func (f *fakeRPC) GetLatestSystemState(ctx context.Context) (chain.SystemState, error) {
	return chain.SystemState{}, nil
}
func (f *fakeRPC) GetBalance(ctx context.Context, address string) (int64, error) {
	return f.balance, nil
}
func (f *fakeRPC) SignAndExecuteTransaction(ctx context.Context, signer chain.Signer, recipient string, amount int64) (chain.TxEffects, error) {
	return f.effects, nil
}

func newTestPipeline(t *testing.T, store *trackingStore) *Pipeline {
	t.Helper()
	cfg := &config.Config{
		APIKey:           "suisuisui",
		DefaultAmount:    100_000_000,
		MaxAmount:        1_000_000_000,
		MinWalletBalance: 1_000_000_000,
		RateWindowMS:     3_600_000,
		MaxPerWallet:     1,
		MaxPerIP:         10,
		MaxPerGlobal:     1000,
		Network:          config.NetworkTestnet,
	}
	rpc := &fakeRPC{
		balance: 5_000_000_000,
		effects: chain.TxEffects{Digest: "0xabc123", Status: "success"},
	}
	dispatcher := chain.NewDispatcher(rpc, chain.NewKeySigner("0xfaucet", "key"), store, "", cfg.MaxAmount, nil)
	cacheStore := cache.NewMemoryStore(cache.DefaultKeyPrefix, time.Hour)
	t.Cleanup(func() { _ = cacheStore.Close() })
	return NewPipeline(cacheStore, store, dispatcher, cfg, nil)
}

func TestAdmitHappyPathWalletMode(t *testing.T) {
	store := newTrackingStore()
	p := newTestPipeline(t, store)

	result := p.Admit(context.Background(), FaucetRequest{
		RequestID:     "req-1",
		WalletAddress: testWallet,
		APIKey:        "suisuisui",
		ClientIP:      "1.2.3.4",
	})

	if result.Denied != nil {
		t.Fatalf("expected admission, got denied: %+v", result.Denied)
	}
	if result.Admitted.Amount != 100_000_000 {
		t.Fatalf("expected default amount, got %d", result.Admitted.Amount)
	}
	if result.Admitted.TxHash != "0xabc123" {
		t.Fatalf("expected tx hash from dispatch, got %q", result.Admitted.TxHash)
	}
	if len(store.savedTxns) != 1 || store.savedTxns[0].Status != storage.StatusSuccess {
		t.Fatalf("expected one success transaction record, got %+v", store.savedTxns)
	}
	if len(store.metricsDeltas) != 1 || store.metricsDeltas[0].Successful != 1 {
		t.Fatalf("expected metrics delta to record one success, got %+v", store.metricsDeltas)
	}
}

func TestAdmitWalletRateLimitOnSecondRequest(t *testing.T) {
	store := newTrackingStore()
	p := newTestPipeline(t, store)
	ctx := context.Background()
	req := FaucetRequest{RequestID: "req-1", WalletAddress: testWallet, APIKey: "suisuisui", ClientIP: "1.2.3.4"}

	first := p.Admit(ctx, req)
	if first.Denied != nil {
		t.Fatalf("expected first request to be admitted, got %+v", first.Denied)
	}

	req.RequestID = "req-2"
	second := p.Admit(ctx, req)
	if second.Denied == nil || second.Denied.Code != CodeRateLimitExceeded {
		t.Fatalf("expected RATE_LIMIT_EXCEEDED on repeat, got %+v", second)
	}
	if second.Denied.RetryAfter <= 0 || second.Denied.RetryAfter > 3600 {
		t.Fatalf("expected retryAfter in (0,3600], got %d", second.Denied.RetryAfter)
	}
}

func TestAdmitInvalidAddress(t *testing.T) {
	store := newTrackingStore()
	p := newTestPipeline(t, store)

	result := p.Admit(context.Background(), FaucetRequest{
		RequestID:     "req-1",
		WalletAddress: "0xzz",
		APIKey:        "suisuisui",
	})
	if result.Denied == nil || result.Denied.Code != CodeInvalidAddress {
		t.Fatalf("expected INVALID_ADDRESS, got %+v", result)
	}
	if len(store.savedTxns) != 0 {
		t.Fatalf("expected no persistence writes on invalid address")
	}
}

func TestAdmitMissingAPIKey(t *testing.T) {
	store := newTrackingStore()
	p := newTestPipeline(t, store)

	result := p.Admit(context.Background(), FaucetRequest{RequestID: "req-1", WalletAddress: testWallet})
	if result.Denied == nil || result.Denied.Code != CodeMissingAPIKey {
		t.Fatalf("expected MISSING_API_KEY, got %+v", result)
	}
}

func TestAdmitInactiveClientRejected(t *testing.T) {
	store := newTrackingStore()
	store.clients["c1"] = &storage.ApiClient{ClientID: "c1", APIKey: "client-key", IsActive: false}
	p := newTestPipeline(t, store)

	result := p.Admit(context.Background(), FaucetRequest{
		RequestID:     "req-1",
		WalletAddress: testWallet,
		APIKey:        "client-key",
	})
	if result.Denied == nil || result.Denied.Code != CodeInactiveClient {
		t.Fatalf("expected INACTIVE_CLIENT, got %+v", result)
	}
}

func TestAdmitRateLimitDisabledSkipsDimensionChecks(t *testing.T) {
	store := newTrackingStore()
	store.settings["rate_limit_enabled"] = "false"
	p := newTestPipeline(t, store)
	ctx := context.Background()
	req := FaucetRequest{RequestID: "req-1", WalletAddress: testWallet, APIKey: "suisuisui", ClientIP: "1.2.3.4"}

	p.Admit(ctx, req)
	req.RequestID = "req-2"
	second := p.Admit(ctx, req)
	if second.Denied != nil {
		t.Fatalf("expected repeat request to be admitted with rate limiting disabled, got %+v", second.Denied)
	}
}

func TestExtractCredentialPrefersXAPIKey(t *testing.T) {
	h := http.Header{}
	h.Set("X-API-Key", "abc")
	h.Set("Authorization", "Bearer xyz")
	if got := ExtractCredential(h); got != "abc" {
		t.Fatalf("expected X-Api-Key to win, got %q", got)
	}
}

func TestExtractCredentialBearer(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer xyz")
	if got := ExtractCredential(h); got != "xyz" {
		t.Fatalf("expected bearer token extracted, got %q", got)
	}
}

func TestExtractCredentialBareAuthorization(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "rawkey")
	if got := ExtractCredential(h); got != "rawkey" {
		t.Fatalf("expected raw authorization value, got %q", got)
	}
}
