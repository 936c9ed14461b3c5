package httpapi

import (
	"net/http"
	"time"
)

// HandleHealth answers GET /api/v1/health; liveness and readiness are
// served by HandleLive and HandleReady. ?detailed=true
// additionally reports wallet balance and RPC round-trip latency.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := s.dispatcher.HealthCheck(ctx)

	data := map[string]interface{}{
		"status":  status.Status,
		"network": string(s.cfg.Network),
	}
	if status.Details != "" {
		data["details"] = status.Details
	}

	if r.URL.Query().Get("detailed") == "true" {
		start := time.Now()
		balance, err := s.dispatcher.GetWalletBalance(ctx)
		latency := time.Since(start)
		detail := map[string]interface{}{
			"rpc_latency_ms": latency.Milliseconds(),
		}
		if err == nil {
			detail["wallet_balance"] = balance
		}
		cacheHealthy, cacheLatency := s.cacheStore.HealthCheck(ctx)
		detail["cache_healthy"] = cacheHealthy
		detail["cache_latency_ms"] = cacheLatency.Milliseconds()
		data["detail"] = detail
	}

	httpStatus := http.StatusOK
	if status.Status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeSuccess(w, httpStatus, data)
}

// HandleLive answers GET /api/v1/health/live: process is up, nothing
// downstream consulted.
func (s *Server) HandleLive(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// HandleReady answers GET /api/v1/health/ready: the dispatcher must
// have completed Initialize.
func (s *Server) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.dispatcher.Ready() {
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dispatcher not initialized")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

// HandleKeepalive and HandleStatusPage answer the uptime probes; the SPA
// dashboard itself is an external collaborator (spec.md §1).
func (s *Server) HandleKeepalive(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) HandleStatusPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mode := s.dispatcher.GetFaucetMode(ctx)
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": time.Since(s.startTime).Seconds(),
		"network":        string(s.cfg.Network),
		"mode":           string(mode),
	})
}
