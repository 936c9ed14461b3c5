package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode selects how sendTokens moves funds.
type Mode string

const (
	ModeWallet Mode = "wallet"
	ModeSDK    Mode = "sdk"
)

// Error codes returned by SendResult.Error, consulted by the admission
// pipeline to pick the outer HTTP status and response code.
const (
	ErrInvalidAddress      = "INVALID_ADDRESS"
	ErrInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrUpstreamRateLimited = "UPSTREAM_RATE_LIMITED"
	ErrDispatchFailed      = "DISPATCH_FAILED"
)

// reservedGas is held back from the faucet wallet's balance to always
// leave enough for the transfer's own gas coin.
const reservedGas = 2_000_000

// sdkRetryAttempts is the total number of upstream attempts SDK mode
// makes; the backoff between them is computed in sendViaSDK.
const sdkRetryAttempts = 3

// largeSentinelBalance is returned by GetWalletBalance in SDK-only mode,
// where the faucet has no locally-funded wallet to report a real
// balance for.
const largeSentinelBalance = 1 << 62

// SettingsReader is the narrow slice of storage.Store the dispatcher
// needs to resolve faucet_mode; declared locally to avoid importing the
// full storage package surface.
type SettingsReader interface {
	ReadSetting(ctx context.Context, name string) (string, bool)
}

// SendResult is the outcome of a sendTokens call.
type SendResult struct {
	Success bool
	TxHash  string
	Error   string
	GasUsed int64
}

// HealthStatus is returned by HealthCheck.
type HealthStatus struct {
	Status  string
	Details string
}

// Dispatcher encapsulates all interaction with the blockchain: mode
// resolution, wallet-mode transfers, SDK-mode upstream delegation, and
// connectivity health.
type Dispatcher struct {
	rpc        RPCClient
	signer     Signer
	settings   SettingsReader
	maxAmount  int64
	sdkURL     string
	httpClient *http.Client
	log        *logrus.Entry

	ready bool
}

// NewDispatcher wires an RPCClient, an optional Signer (nil when no
// private key is configured), and the settings store used to resolve
// faucet_mode.
func NewDispatcher(rpc RPCClient, signer Signer, settings SettingsReader, sdkURL string, maxAmount int64, log *logrus.Entry) *Dispatcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{
		rpc:        rpc,
		signer:     signer,
		settings:   settings,
		maxAmount:  maxAmount,
		sdkURL:     sdkURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// Initialize connects to the RPC endpoint and verifies connectivity.
func (d *Dispatcher) Initialize(ctx context.Context) error {
	if _, err := d.rpc.GetLatestSystemState(ctx); err != nil {
		return fmt.Errorf("connect to rpc: %w", err)
	}
	d.ready = true
	return nil
}

func (d *Dispatcher) Ready() bool { return d.ready }

// GetFaucetMode resolves the active dispatch mode: the faucet_mode
// setting if one has been written, otherwise wallet when a signer is
// configured and sdk otherwise.
func (d *Dispatcher) GetFaucetMode(ctx context.Context) Mode {
	if v, ok := d.settings.ReadSetting(ctx, "faucet_mode"); ok {
		switch Mode(v) {
		case ModeWallet, ModeSDK:
			return Mode(v)
		}
	}
	if d.signer != nil {
		return ModeWallet
	}
	return ModeSDK
}

// GetWalletBalance returns the faucet wallet's current balance in
// base-units, or the sentinel value in SDK-only mode.
func (d *Dispatcher) GetWalletBalance(ctx context.Context) (int64, error) {
	if d.signer == nil {
		return largeSentinelBalance, nil
	}
	return d.rpc.GetBalance(ctx, d.signer.Address())
}

// HealthCheck reports RPC connectivity.
func (d *Dispatcher) HealthCheck(ctx context.Context) HealthStatus {
	if _, err := d.rpc.GetLatestSystemState(ctx); err != nil {
		return HealthStatus{Status: "down", Details: err.Error()}
	}
	return HealthStatus{Status: "ok"}
}

// SendTokens validates, resolves mode, and dispatches a transfer of
// amount base-units to recipient. It never silently falls back from
// wallet mode to SDK mode: a wallet-mode failure is reported as-is so
// an operator can switch the mode setting deliberately.
func (d *Dispatcher) SendTokens(ctx context.Context, recipient string, amount int64, requestID string) SendResult {
	normalized, ok := ValidateAddress(recipient)
	if !ok {
		return SendResult{Error: ErrInvalidAddress}
	}
	if amount > d.maxAmount {
		return SendResult{Error: ErrDispatchFailed}
	}

	mode := d.GetFaucetMode(ctx)
	var result SendResult
	if mode == ModeWallet {
		result = d.sendViaWallet(ctx, normalized, amount)
	} else {
		result = d.sendViaSDK(ctx, normalized, amount)
	}

	if result.Success {
		d.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"tx_hash":    result.TxHash,
			"to":         normalized,
			"amount":     amount,
			"gas_used":   result.GasUsed,
		}).Info("transaction dispatched")
	}
	return result
}

func (d *Dispatcher) sendViaWallet(ctx context.Context, recipient string, amount int64) SendResult {
	if d.signer == nil {
		return SendResult{Error: ErrDispatchFailed}
	}

	balance, err := d.rpc.GetBalance(ctx, d.signer.Address())
	if err != nil {
		return SendResult{Error: ErrDispatchFailed}
	}
	if balance < amount+reservedGas {
		return SendResult{Error: ErrInsufficientBalance}
	}

	effects, err := d.rpc.SignAndExecuteTransaction(ctx, d.signer, recipient, amount)
	if err != nil {
		return SendResult{Error: ErrDispatchFailed}
	}
	if effects.Status != "success" {
		return SendResult{Error: effects.ErrorMessage}
	}
	return SendResult{Success: true, TxHash: effects.Digest, GasUsed: effects.GasUsed}
}

// sendViaSDK posts to the network's upstream faucet endpoint, making at
// most sdkRetryAttempts attempts in all and retrying only transient
// (network/5xx) failures, with a 2^n second backoff before attempt n
// (2s, then 4s). Rate-limit and validation errors from the upstream are
// not retried.
func (d *Dispatcher) sendViaSDK(ctx context.Context, recipient string, amount int64) SendResult {
	var lastErr error
	for attempt := 0; attempt < sdkRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			case <-ctx.Done():
				return SendResult{Error: ErrDispatchFailed}
			}
		}

		result, retryable, err := d.postUpstream(ctx, recipient, amount)
		if err == nil {
			return result
		}
		lastErr = err
		if !retryable {
			return result
		}
	}
	return SendResult{Error: fmt.Sprintf("%s: %v", ErrDispatchFailed, lastErr)}
}

var errUpstreamRateLimited = errors.New("upstream rate limited")

// postUpstream issues a single attempt. The second return value
// indicates whether the caller should retry; rate-limit and 4xx
// validation responses are not retryable.
func (d *Dispatcher) postUpstream(ctx context.Context, recipient string, amount int64) (SendResult, bool, error) {
	body := fmt.Sprintf(`{"FixedAmountRequest":{"recipient":%q}}`, recipient)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.sdkURL, newJSONReader(body))
	if err != nil {
		return SendResult{Error: ErrDispatchFailed}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return SendResult{Error: ErrDispatchFailed}, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return SendResult{Error: ErrUpstreamRateLimited}, false, errUpstreamRateLimited
	}
	if resp.StatusCode >= 500 {
		return SendResult{Error: ErrDispatchFailed}, true, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return SendResult{Error: ErrDispatchFailed}, false, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	digest := extractDigest(resp)
	if digest == "" {
		return SendResult{Error: ErrDispatchFailed}, false, fmt.Errorf("upstream response missing a digest field")
	}
	return SendResult{Success: true, TxHash: digest}, false, nil
}
