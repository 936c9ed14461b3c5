package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/suifx/faucet/internal/admission"
)

// faucetRequestBody is the public request shape for POST
// /api/v1/faucet/request; either address or walletAddress may be used.
type faucetRequestBody struct {
	Address       string `json:"address"`
	WalletAddress string `json:"walletAddress"`
	Amount        int64  `json:"amount"`
}

type faucetResponseBody struct {
	TransactionHash string `json:"transactionHash"`
	Amount          string `json:"amount"`
	WalletAddress   string `json:"walletAddress"`
	Network         string `json:"network"`
	ExplorerURL     string `json:"explorerUrl"`
}

// HandleFaucetRequest implements POST /api/v1/faucet/request: the
// primary admit-and-dispatch operation.
func (s *Server) HandleFaucetRequest(w http.ResponseWriter, r *http.Request) {
	var body faucetRequestBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	wallet := body.WalletAddress
	if wallet == "" {
		wallet = body.Address
	}

	req := admission.FaucetRequest{
		RequestID:     requestIDFromHeader(w),
		WalletAddress: wallet,
		Amount:        body.Amount,
		ClientIP:      clientIP(r),
		UserAgent:     r.UserAgent(),
		APIKey:        admission.ExtractCredential(r.Header),
		ReceivedAt:    time.Now().UTC(),
	}

	result := s.pipeline.Admit(r.Context(), req)
	if result.Denied != nil {
		writeDenied(w, result.Denied)
		return
	}

	admitted := result.Admitted
	writeSuccess(w, http.StatusOK, faucetResponseBody{
		TransactionHash: admitted.TxHash,
		Amount:          formatAmount(admitted.Amount),
		WalletAddress:   admitted.WalletAddress,
		Network:         admitted.Network,
		ExplorerURL:     admitted.ExplorerURL,
	})
}

// HandleFaucetStatus implements GET /api/v1/faucet/status: an
// unauthenticated snapshot of balance, network, and active limits.
func (s *Server) HandleFaucetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	balance, err := s.dispatcher.GetWalletBalance(ctx)
	if err != nil {
		balance = 0
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"network":        string(s.cfg.Network),
		"walletBalance":  balance,
		"defaultAmount":  s.cfg.DefaultAmount,
		"maxAmount":      s.cfg.MaxAmount,
		"maxPerWallet":   s.cfg.MaxPerWallet,
		"maxPerIP":       s.cfg.MaxPerIP,
		"mode":           string(s.dispatcher.GetFaucetMode(ctx)),
	})
}

// HandleFaucetMode implements GET /api/v1/faucet/mode; requires API
// key per spec.md §6.
func (s *Server) HandleFaucetMode(w http.ResponseWriter, r *http.Request) {
	credential := admission.ExtractCredential(r.Header)
	if credential == "" {
		writeError(w, http.StatusUnauthorized, admission.CodeMissingAPIKey, "")
		return
	}
	if s.cfg.APIKey == "" || credential != s.cfg.APIKey {
		client, err := s.store.FindApiClientByKey(r.Context(), credential)
		if err != nil || client == nil {
			writeError(w, http.StatusUnauthorized, admission.CodeInvalidAPIKey, "")
			return
		}
		if !client.IsActive {
			writeError(w, http.StatusUnauthorized, admission.CodeInactiveClient, "")
			return
		}
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"mode": string(s.dispatcher.GetFaucetMode(r.Context())),
	})
}

func writeDenied(w http.ResponseWriter, denied *admission.Denied) {
	if denied.RetryAfter > 0 {
		w.Header().Set("Retry-After", formatAmount(denied.RetryAfter))
	}
	writeError(w, denied.HTTPStatus, denied.Code, "")
}

func formatAmount(n int64) string {
	return strconv.FormatInt(n, 10)
}

func requestIDFromHeader(w http.ResponseWriter) string {
	if v := w.Header().Get("X-Request-Id"); v != "" {
		return v
	}
	return uuid.NewString()
}
