package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/suifx/faucet/internal/admin"
	"github.com/suifx/faucet/internal/admission"
	"github.com/suifx/faucet/internal/storage"
)

type sessionCtxKey int

const sessionKey sessionCtxKey = iota

// requireAdmin validates either a bearer JWT or the internal-bot
// override (spec.md §4.6) before delegating to next. On success the
// validated Session is attached to the request context.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.BotOverride(r) {
			session := &admin.Session{Subject: "bot", IsBot: true}
			next(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
			return
		}

		token := admission.ExtractCredential(r.Header)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "")
			return
		}
		session, err := s.sessions.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", err.Error())
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	}
}

// sessionFromContext returns the authenticated admin username carried
// by requireAdmin, or "" if none is present (should not happen on a
// protected route).
func sessionFromContext(r *http.Request) string {
	session, ok := r.Context().Value(sessionKey).(*admin.Session)
	if !ok || session == nil {
		return ""
	}
	return session.Subject
}

type adminLoginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleAdminLogin implements POST /api/v1/admin/login.
func (s *Server) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body adminLoginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body")
		return
	}

	user, err := s.store.AuthenticateAdmin(r.Context(), body.Username, body.Password)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "")
		return
	}

	token, expiresAt, err := s.sessions.Issue(user.Username, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}

	s.logAdminActivity(r, user.Username, "login", "")
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"expiresAt": expiresAt.Format(time.RFC3339),
		"role":      string(user.Role),
	})
}

// HandleAdminLogout implements POST /api/v1/admin/logout: revokes the
// bearer token from the active set even though its signature remains
// valid until natural expiry.
func (s *Server) HandleAdminLogout(w http.ResponseWriter, r *http.Request) {
	token := admission.ExtractCredential(r.Header)
	if token != "" {
		s.sessions.Revoke(token)
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"loggedOut": true})
}

// HandleAdminDashboard implements GET /api/v1/admin/dashboard:
// aggregated transaction and daily-metrics stats.
func (s *Server) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := s.store.TransactionStats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}
	recentMetrics, err := s.store.ListDailyMetrics(ctx, 7)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}
	balance, _ := s.dispatcher.GetWalletBalance(ctx)

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"transactionStats": stats,
		"dailyMetrics":     recentMetrics,
		"walletBalance":    balance,
		"mode":             string(s.dispatcher.GetFaucetMode(ctx)),
	})
}

// HandleAdminTransactions implements GET /api/v1/admin/transactions.
func (s *Server) HandleAdminTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	rows, err := s.store.ListTransactions(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, rows)
}

// HandleAdminActivities implements GET /api/v1/admin/activities.
func (s *Server) HandleAdminActivities(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	rows, err := s.store.ListAdminActivities(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, rows)
}

// HandleRateLimitSettings implements GET /api/v1/admin/rate-limits:
// the current value of every recognized setting.
func (s *Server) HandleRateLimitSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := make(map[string]string)
	for _, name := range storage.RecognizedSettingNames() {
		if v, ok := s.store.ReadSetting(ctx, name); ok {
			values[name] = v
		} else {
			values[name] = storage.DefaultSettingValue(name)
		}
	}
	writeSuccess(w, http.StatusOK, values)
}

type bulkSettingsBody struct {
	Settings map[string]interface{} `json:"settings"`
}

type settingUpdated struct {
	SettingName string      `json:"setting_name"`
	NewValue    interface{} `json:"new_value"`
}

type settingError struct {
	SettingName string `json:"setting_name"`
	Error       string `json:"error"`
}

// HandleBulkSettingsUpdate implements PUT /api/v1/admin/rate-limits/bulk.
// Each setting is validated and written independently; a bad name does
// not block the others from applying (spec.md §4.3, scenario S5).
func (s *Server) HandleBulkSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var body bulkSettingsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body")
		return
	}

	values := make(map[string]string, len(body.Settings))
	for name, v := range body.Settings {
		values[name] = stringifySetting(v)
	}

	actor := sessionFromContext(r)
	result := s.store.WriteSettings(r.Context(), values, actor)

	updated := make([]settingUpdated, 0, len(result.Updated))
	for _, name := range result.Updated {
		updated = append(updated, settingUpdated{SettingName: name, NewValue: body.Settings[name]})
	}
	errs := make([]settingError, 0, len(result.Errors))
	for name, msg := range result.Errors {
		errs = append(errs, settingError{SettingName: name, Error: msg})
	}

	s.logAdminActivity(r, actor, "rate_limits.bulk_update", "")
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"updated": updated,
		"errors":  errs,
	})
}

// HandleCurrentConfig implements GET /api/v1/admin/config: a redacted
// snapshot of the resolved configuration, secrets never included.
func (s *Server) HandleCurrentConfig(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"network":          string(s.cfg.Network),
		"defaultAmount":    s.cfg.DefaultAmount,
		"maxAmount":        s.cfg.MaxAmount,
		"minWalletBalance": s.cfg.MinWalletBalance,
		"rateWindowMs":     s.cfg.RateWindowMS,
		"maxPerWallet":     s.cfg.MaxPerWallet,
		"maxPerIP":         s.cfg.MaxPerIP,
		"maxPerGlobal":     s.cfg.MaxPerGlobal,
		"walletMode":       s.cfg.WalletModeConfigured(),
	})
}

// HandleCacheFlush implements POST /api/v1/admin/cache/flush.
func (s *Server) HandleCacheFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.cacheStore.Flush(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}
	actor := sessionFromContext(r)
	s.logAdminActivity(r, actor, "cache.flush", "")
	writeSuccess(w, http.StatusOK, map[string]interface{}{"flushed": true})
}

type testTransactionBody struct {
	WalletAddress string `json:"walletAddress"`
	Amount        int64  `json:"amount"`
}

// HandleTestTransaction implements POST /api/v1/admin/test-transaction:
// an operator-invoked dispatch that reuses the chain dispatcher
// directly, bypassing rate limits and journaling.
func (s *Server) HandleTestTransaction(w http.ResponseWriter, r *http.Request) {
	var body testTransactionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body")
		return
	}
	amount := body.Amount
	if amount == 0 {
		amount = s.cfg.DefaultAmount
	}

	result := s.dispatcher.SendTokens(r.Context(), body.WalletAddress, amount, requestIDFromHeader(w))
	actor := sessionFromContext(r)
	s.logAdminActivity(r, actor, "test_transaction", body.WalletAddress)

	if !result.Success {
		writeError(w, http.StatusInternalServerError, result.Error, "")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"transactionHash": result.TxHash,
		"gasUsed":         result.GasUsed,
	})
}

func (s *Server) logAdminActivity(r *http.Request, actor, action, details string) {
	_ = s.store.SaveAdminActivity(r.Context(), &storage.AdminActivity{
		AdminUsername: actor,
		Action:        action,
		Details:       details,
		ClientIP:      clientIP(r),
		CreatedAt:     time.Now().UTC(),
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func stringifySetting(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
