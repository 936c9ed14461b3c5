package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/suifx/faucet/internal/admin"
	"github.com/suifx/faucet/internal/admission"
	"github.com/suifx/faucet/internal/cache"
	"github.com/suifx/faucet/internal/chain"
	"github.com/suifx/faucet/internal/clients"
	"github.com/suifx/faucet/internal/config"
	"github.com/suifx/faucet/internal/storage"
)

// Server wires every backing component into the route table. It holds
// no package-level singleton; every dependency arrives through
// NewServer, matching the rest of this module's construction style.
type Server struct {
	cfg        *config.Config
	log        *logrus.Logger
	pipeline   *admission.Pipeline
	dispatcher *chain.Dispatcher
	cacheStore cache.Store
	store      storage.Store
	registry   *clients.Registry
	sessions   *admin.SessionManager
	startTime  time.Time
}

// NewServer constructs the HTTP surface from its backing components.
func NewServer(
	cfg *config.Config,
	log *logrus.Logger,
	pipeline *admission.Pipeline,
	dispatcher *chain.Dispatcher,
	cacheStore cache.Store,
	store storage.Store,
	registry *clients.Registry,
	sessions *admin.SessionManager,
) *Server {
	return &Server{
		cfg:        cfg,
		log:        log,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		cacheStore: cacheStore,
		store:      store,
		registry:   registry,
		sessions:   sessions,
		startTime:  time.Now().UTC(),
	}
}

// Router builds the full gorilla/mux route table with request-ID
// tagging and structured logging applied to every route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.log))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/faucet/request", s.HandleFaucetRequest).Methods(http.MethodPost)
	api.HandleFunc("/faucet/status", s.HandleFaucetStatus).Methods(http.MethodGet)
	api.HandleFunc("/faucet/mode", s.HandleFaucetMode).Methods(http.MethodGet)

	api.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
	api.HandleFunc("/health/live", s.HandleLive).Methods(http.MethodGet)
	api.HandleFunc("/health/ready", s.HandleReady).Methods(http.MethodGet)
	api.HandleFunc("/keepalive", s.HandleKeepalive).Methods(http.MethodGet)
	api.HandleFunc("/status", s.HandleStatusPage).Methods(http.MethodGet)

	api.HandleFunc("/clients/register", s.HandleRegisterClient).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}", s.HandleGetClient).Methods(http.MethodGet)

	api.HandleFunc("/admin/login", s.HandleAdminLogin).Methods(http.MethodPost)
	api.HandleFunc("/admin/logout", s.requireAdmin(s.HandleAdminLogout)).Methods(http.MethodPost)
	api.HandleFunc("/admin/dashboard", s.requireAdmin(s.HandleAdminDashboard)).Methods(http.MethodGet)
	api.HandleFunc("/admin/transactions", s.requireAdmin(s.HandleAdminTransactions)).Methods(http.MethodGet)
	api.HandleFunc("/admin/activities", s.requireAdmin(s.HandleAdminActivities)).Methods(http.MethodGet)
	api.HandleFunc("/admin/rate-limits", s.requireAdmin(s.HandleRateLimitSettings)).Methods(http.MethodGet)
	api.HandleFunc("/admin/rate-limits/bulk", s.requireAdmin(s.HandleBulkSettingsUpdate)).Methods(http.MethodPut)
	api.HandleFunc("/admin/config", s.requireAdmin(s.HandleCurrentConfig)).Methods(http.MethodGet)
	api.HandleFunc("/admin/cache/flush", s.requireAdmin(s.HandleCacheFlush)).Methods(http.MethodPost)
	api.HandleFunc("/admin/test-transaction", s.requireAdmin(s.HandleTestTransaction)).Methods(http.MethodPost)

	return r
}

// Handler wraps Router with CORS, configured from cfg.CORSOrigin.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(s.Router())
}

// Run starts the HTTP server and blocks until ctx is canceled, then
// drains in-flight requests within gracePeriod before returning.
func (s *Server) Run(ctx context.Context, gracePeriod time.Duration) error {
	httpServer := &http.Server{
		Addr:         ":" + s.cfg.HTTPPort,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("port", s.cfg.HTTPPort).Info("faucet http surface listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen and serve: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
