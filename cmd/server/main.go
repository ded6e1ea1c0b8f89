package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/polyserve/clob/client"
	"github.com/betbot/polyserve/clob/signing"
	"github.com/betbot/polyserve/clob/types"
	"github.com/betbot/polyserve/internal/books"
	"github.com/betbot/polyserve/internal/discovery"
	"github.com/betbot/polyserve/internal/gateway"
	"github.com/betbot/polyserve/internal/groups"
	"github.com/betbot/polyserve/internal/registry"
	"github.com/betbot/polyserve/pkg/config"
	"github.com/betbot/polyserve/pkg/logger"
	"github.com/betbot/polyserve/pkg/secretstore"
	"github.com/betbot/polyserve/pkg/shutdown"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("POLYSERVE_CONFIG"), "YAML config file path (optional)")
		listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	shutdownMgr := shutdown.NewManager()

	venue, err := buildVenueClient(cfg, shutdownMgr)
	if err != nil {
		logger.Errorf("init venue client: %v", err)
		os.Exit(1)
	}

	reg := registry.New()
	groupStore := groups.NewStore()
	aggregator := books.NewAggregator(venue)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	loop := discovery.NewLoop(venue, reg, discovery.Config{
		InitialCursor:   cfg.Discovery.InitialCursor,
		RefreshInterval: cfg.Discovery.RefreshInterval,
	})
	go func() {
		if err := loop.Run(rootCtx); err != nil && rootCtx.Err() == nil {
			logger.Errorf("discovery loop exited: %v", err)
		}
	}()

	srv := gateway.New(reg, aggregator, groupStore, venue)
	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	shutdownMgr.OnShutdown(func(ctx context.Context) {
		_ = httpSrv.Shutdown(ctx)
	})

	go func() {
		logger.Infof("gateway listening on %s", cfg.Server.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	rootCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdownMgr.Shutdown(ctx)
}

// buildVenueClient wires the CLOB client. Without a private key the server
// still boots: search and books work, order endpoints fail at call time.
func buildVenueClient(cfg *config.Config, shutdownMgr *shutdown.Manager) (*client.Client, error) {
	opts := &client.Options{
		Proxy:         cfg.Venue.Proxy,
		SignatureType: types.SignatureType(cfg.Venue.SignatureType),
		FunderAddress: cfg.Venue.FunderAddress,
	}

	if cfg.Venue.PrivateKey == "" {
		logger.Warn("no private key configured, order endpoints will be unavailable")
		venue, err := client.NewClient(cfg.Venue.ClobAddress, types.Chain(cfg.Venue.ChainID), nil, nil, opts)
		if err != nil {
			return nil, err
		}
		return venue, nil
	}

	privateKey, err := signing.PrivateKeyFromHex(cfg.Venue.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	venue, err := client.NewClient(cfg.Venue.ClobAddress, types.Chain(cfg.Venue.ChainID), privateKey, nil, opts)
	if err != nil {
		return nil, err
	}

	address := signing.GetAddressFromPrivateKey(privateKey).Hex()

	// Derived API creds are expensive to re-create; cache them when a
	// creds path is configured.
	var store *secretstore.Store
	if cfg.Venue.CredsPath != "" {
		store, err = secretstore.Open(secretstore.OpenOptions{Path: cfg.Venue.CredsPath})
		if err != nil {
			return nil, fmt.Errorf("open creds store: %w", err)
		}
		shutdownMgr.OnShutdown(func(ctx context.Context) {
			_ = store.Close()
		})

		var cached types.ApiKeyCreds
		ok, err := store.GetJSON("clob_api_creds:"+address, &cached)
		if err != nil {
			logger.Warnf("read cached creds: %v", err)
		}
		if ok {
			venue.SetCreds(&cached)
			logger.Infof("loaded cached venue creds for %s", address)
			return venue, nil
		}
	}

	creds, err := venue.CreateOrDeriveAPIKey(nil)
	if err != nil {
		return nil, fmt.Errorf("derive venue api key: %w", err)
	}
	logger.Infof("derived venue creds for %s", address)

	if store != nil {
		if err := store.SetJSON("clob_api_creds:"+address, creds); err != nil {
			logger.Warnf("cache creds: %v", err)
		}
	}
	return venue, nil
}
