// Command faucetd is the faucet service's process entrypoint: it
// resolves configuration, constructs every component, wires the HTTP
// surface, and runs until a termination signal triggers a graceful
// drain. Grounded on walletserver/main.go and cmd/xchainserver/main.go's
// config-load-then-construct-then-listen shape, extended with the
// ratelimiter demo's signal-driven shutdown sequence.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suifx/faucet/internal/admin"
	"github.com/suifx/faucet/internal/admission"
	"github.com/suifx/faucet/internal/cache"
	"github.com/suifx/faucet/internal/chain"
	"github.com/suifx/faucet/internal/clients"
	"github.com/suifx/faucet/internal/config"
	"github.com/suifx/faucet/internal/httpapi"
	"github.com/suifx/faucet/internal/logging"
	"github.com/suifx/faucet/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.Env)
	entry := log.WithField("component", "faucetd")

	cacheStore := buildCacheStore(cfg, entry)
	defer cacheStore.Close()

	store := buildStorageStore(cfg, entry)
	defer store.Close()

	dispatcher := buildDispatcher(cfg, store, entry)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := dispatcher.Initialize(ctx); err != nil {
		entry.WithError(err).Warn("chain rpc not reachable at startup; continuing, health checks will report down")
	}
	cancel()

	pipeline := admission.NewPipeline(cacheStore, store, dispatcher, cfg, entry)
	registry := clients.NewRegistry(store, cfg.ClientIDPrefix, cfg.APIKeyPrefix)
	sessions := admin.NewSessionManager(cfg.JWTSecret, cfg.APIKey, cfg.BotUserAgentSuffix)

	server := httpapi.NewServer(cfg, log, pipeline, dispatcher, cacheStore, store, registry, sessions)

	probeCtx, stopProbe := context.WithCancel(context.Background())
	defer stopProbe()
	go dispatcher.RunBalanceProber(probeCtx, time.Duration(cfg.BalancePollInterval)*time.Second, cfg.MinWalletBalance)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(runCtx, time.Duration(cfg.ShutdownGraceSeconds)*time.Second)
	}()

	<-runCtx.Done()
	entry.Info("shutdown signal received, draining in-flight requests")

	if err := <-errCh; err != nil {
		entry.WithError(err).Fatal("http surface exited with error")
	}
	entry.Info("faucetd stopped")
}

func buildCacheStore(cfg *config.Config, log *logrus.Entry) cache.Store {
	if cfg.CacheURL == "" {
		log.Info("CACHE_URL not set, running cache in-memory only")
		return cache.NewMemoryStore(cache.DefaultKeyPrefix, time.Second)
	}

	remote, err := cache.NewRedisStore(cfg.CacheURL, cache.DefaultKeyPrefix)
	if err != nil {
		log.WithError(err).Warn("failed to configure redis cache, falling back to in-memory")
		return cache.NewMemoryStore(cache.DefaultKeyPrefix, time.Second)
	}
	return cache.NewFailoverStore(remote, cache.DefaultKeyPrefix, log)
}

func buildStorageStore(cfg *config.Config, log *logrus.Entry) storage.Store {
	if cfg.DBURL == "" {
		return storage.NewDegradedStore(log, nil)
	}

	store, err := storage.NewSQLStore(cfg.DBURL, cfg.AdminUsername, cfg.AdminPassword, log)
	if err != nil {
		return storage.NewDegradedStore(log, err)
	}
	return store
}

func buildDispatcher(cfg *config.Config, store storage.Store, log *logrus.Entry) *chain.Dispatcher {
	rpcURL := cfg.RPCURL
	if rpcURL == "" {
		rpcURL = chain.DefaultRPCEndpoint(cfg.Network)
	}
	rpc := chain.NewJSONRPCClient(rpcURL, time.Duration(cfg.RequestTimeoutSeconds)*time.Second)

	var signer chain.Signer
	if cfg.WalletModeConfigured() {
		address := chain.DeriveAddress(cfg.PrivateKeyHex)
		signer = chain.NewKeySigner(address, cfg.PrivateKeyHex)
	}

	sdkURL := chain.DefaultSDKEndpoint(cfg.Network)
	return chain.NewDispatcher(rpc, signer, store, sdkURL, cfg.MaxAmount, log)
}
