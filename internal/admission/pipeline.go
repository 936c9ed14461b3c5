package admission

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suifx/faucet/internal/cache"
	"github.com/suifx/faucet/internal/chain"
	"github.com/suifx/faucet/internal/config"
	"github.com/suifx/faucet/internal/storage"
)

// dimension is one facet of rate limiting evaluated in a fixed order;
// the first to exceed its limit aborts admission.
type dimension struct {
	name  string
	key   string
	limit int
}

// Pipeline wires the cache, persistence, and chain-dispatch components
// into the single admit operation. No package-level singleton holds any
// of these — every dependency arrives through NewPipeline.
type Pipeline struct {
	cache      cache.Store
	store      storage.Store
	dispatcher *chain.Dispatcher
	cfg        *config.Config
	log        *logrus.Entry
}

// NewPipeline constructs the admission pipeline from its three backing
// components and the resolved configuration.
func NewPipeline(cacheStore cache.Store, store storage.Store, dispatcher *chain.Dispatcher, cfg *config.Config, log *logrus.Entry) *Pipeline {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pipeline{cache: cacheStore, store: store, dispatcher: dispatcher, cfg: cfg, log: log}
}

func (p *Pipeline) setting(ctx context.Context, name, fallback string) string {
	if v, ok := p.store.ReadSetting(ctx, name); ok {
		return v
	}
	return fallback
}

func (p *Pipeline) settingBool(ctx context.Context, name string, fallback bool) bool {
	v := p.setting(ctx, name, "")
	switch v {
	case "true":
		return true
	case "false":
		return false
	default:
		return fallback
	}
}

func (p *Pipeline) settingInt(ctx context.Context, name string, fallback int) int {
	v := p.setting(ctx, name, "")
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Admit runs the full authenticate → validate → rate-limit → dispatch →
// journal sequence and returns a tagged Result. It short-circuits on
// the first failing step.
func (p *Pipeline) Admit(ctx context.Context, req FaucetRequest) Result {
	client, res, ok := p.authenticate(ctx, req)
	if !ok {
		return res
	}

	normalizedAddr, valid := chain.ValidateAddress(req.WalletAddress)
	if !valid {
		return denied(CodeInvalidAddress, 0)
	}

	amount := req.Amount
	if amount == 0 {
		amount = p.cfg.DefaultAmount
	}
	if amount <= 0 || amount > p.cfg.MaxAmount {
		return denied(CodeInvalidAmount, 0)
	}

	if res, ok := p.enforceRateLimits(ctx, req, client, normalizedAddr); !ok {
		return res
	}

	mode := p.dispatcher.GetFaucetMode(ctx)
	if mode == chain.ModeWallet {
		balance, err := p.dispatcher.GetWalletBalance(ctx)
		if err == nil && balance < p.cfg.MinWalletBalance {
			return denied(CodeFaucetEmpty, 0)
		}
	}

	return p.dispatch(ctx, req, client, normalizedAddr, amount)
}

// authenticate extracts and checks the caller's API key. The second
// return value carries the tagged Denied outcome when ok is false.
func (p *Pipeline) authenticate(ctx context.Context, req FaucetRequest) (*storage.ApiClient, Result, bool) {
	if req.APIKey == "" {
		return nil, denied(CodeMissingAPIKey, 0), false
	}
	if p.cfg.APIKey != "" && req.APIKey == p.cfg.APIKey {
		return nil, Result{}, true
	}

	apiClient, err := p.store.FindApiClientByKey(ctx, req.APIKey)
	if err != nil || apiClient == nil {
		return nil, denied(CodeInvalidAPIKey, 0), false
	}
	if !apiClient.IsActive {
		return nil, denied(CodeInactiveClient, 0), false
	}
	return apiClient, Result{}, true
}

// enforceRateLimits walks the four dimensions in order, consulting
// cache counters and, for the wallet dimension, the separate cooldown
// tracker. client is nil when the caller authenticated with the legacy
// master key (no per-client override applies).
func (p *Pipeline) enforceRateLimits(ctx context.Context, req FaucetRequest, client *storage.ApiClient, wallet string) (Result, bool) {
	if !p.settingBool(ctx, "rate_limit_enabled", true) {
		return Result{}, true
	}

	emergency := p.settingBool(ctx, "emergency_mode", false)
	windowMs := p.cfg.RateWindowMS

	maxPerWallet := p.settingInt(ctx, "faucet_max_per_wallet", p.cfg.MaxPerWallet)
	maxPerIP := p.settingInt(ctx, "faucet_max_per_ip", p.cfg.MaxPerIP)
	if emergency {
		maxPerIP = p.settingInt(ctx, "emergency_max_per_ip", 1)
	}
	maxPerGlobal := p.cfg.MaxPerGlobal
	if client != nil && client.RateLimitOverride != nil {
		maxPerWallet = *client.RateLimitOverride
		maxPerIP = *client.RateLimitOverride
	}

	dims := []dimension{
		{name: "wallet", key: cache.RateLimitKey(cache.DefaultKeyPrefix, "wallet", wallet), limit: maxPerWallet},
		{name: "ip", key: cache.RateLimitKey(cache.DefaultKeyPrefix, "ip", req.ClientIP), limit: maxPerIP},
		{name: "client", key: cache.RateLimitKey(cache.DefaultKeyPrefix, "client", clientKey(client)), limit: clientDimensionLimit(client)},
		{name: "global", key: cache.RateLimitKey(cache.DefaultKeyPrefix, "global", "all"), limit: maxPerGlobal},
	}

	for _, d := range dims {
		if d.limit <= 0 {
			continue
		}
		count, ttl := p.cache.Incr(ctx, d.key, windowMs)
		if count > int64(d.limit) {
			return denied(CodeRateLimitExceeded, ttl), false
		}
	}

	cooldownSeconds := int64(p.settingInt(ctx, "faucet_cooldown_seconds", 3600))
	if emergency {
		cooldownSeconds = int64(p.settingInt(ctx, "emergency_cooldown", 7200))
	}
	if last, ok := p.cache.GetLastRequest(ctx, wallet); ok {
		elapsed := time.Since(last)
		if elapsed < time.Duration(cooldownSeconds)*time.Second {
			retryAfter := cooldownSeconds - int64(elapsed.Seconds())
			return denied(CodeRateLimitExceeded, retryAfter), false
		}
	}

	return Result{}, true
}

func clientKey(client *storage.ApiClient) string {
	if client == nil {
		return "legacy"
	}
	return client.ClientID
}

func clientDimensionLimit(client *storage.ApiClient) int {
	if client == nil || client.RateLimitOverride == nil {
		return 0 // no per-client dimension when unset; ip/global still apply
	}
	return *client.RateLimitOverride
}

// dispatch invokes the chain dispatcher and journals the outcome.
// Counters incremented during rate-limit evaluation are never rolled
// back on a failed dispatch — by design, an attempt has been made.
func (p *Pipeline) dispatch(ctx context.Context, req FaucetRequest, client *storage.ApiClient, wallet string, amount int64) Result {
	sendResult := p.dispatcher.SendTokens(ctx, wallet, amount, req.RequestID)
	today := time.Now().UTC().Format("2006-01-02")

	if !sendResult.Success {
		errMsg := sendResult.Error
		_ = p.store.SaveTransaction(ctx, &storage.TransactionRecord{
			RequestID:     req.RequestID,
			WalletAddress: wallet,
			Amount:        formatAmount(amount),
			Status:        storage.StatusFailed,
			ErrorMessage:  &errMsg,
			ClientIP:      req.ClientIP,
			UserAgent:     req.UserAgent,
		})
		_ = p.store.UpsertDailyMetrics(ctx, today, storage.MetricsDelta{Requests: 1, Failed: 1})
		if client != nil {
			p.store.RecordClientUsage(ctx, client.ClientID, "/api/v1/faucet/request", "POST", 500, 0)
		}

		switch sendResult.Error {
		case chain.ErrUpstreamRateLimited:
			return denied(CodeUpstreamRateLimited, 0)
		default:
			return denied(CodeTransactionFailed, 0)
		}
	}

	p.cache.TrackLastRequest(ctx, wallet, time.Now(), p.cfg.RateWindowMS)

	_ = p.store.SaveTransaction(ctx, &storage.TransactionRecord{
		RequestID:     req.RequestID,
		WalletAddress: wallet,
		Amount:        formatAmount(amount),
		TxHash:        &sendResult.TxHash,
		Status:        storage.StatusSuccess,
		ClientIP:      req.ClientIP,
		UserAgent:     req.UserAgent,
	})
	_ = p.store.UpsertDailyMetrics(ctx, today, storage.MetricsDelta{
		Requests:          1,
		Successful:        1,
		AmountDistributed: amount,
	})
	if client != nil {
		p.store.RecordClientUsage(ctx, client.ClientID, "/api/v1/faucet/request", "POST", 200, 0)
	}

	return Result{Admitted: &Admitted{
		TxHash:        sendResult.TxHash,
		Amount:        amount,
		WalletAddress: wallet,
		Network:       string(p.cfg.Network),
		ExplorerURL:   explorerURL(p.cfg.Network, sendResult.TxHash),
	}}
}
