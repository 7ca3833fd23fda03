// Package app assembles the server: storage, RPC registry and the two
// transports.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goclio/internal/config"
	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/data/pgheaders"
	"github.com/LeJamon/goclio/internal/rpc"
	ammhandlers "github.com/LeJamon/goclio/internal/rpc/handlers/amm"
	ledgerhandlers "github.com/LeJamon/goclio/internal/rpc/handlers/ledger"
	serverhandlers "github.com/LeJamon/goclio/internal/rpc/handlers/server"
)

// App owns the server's long-lived components.
type App struct {
	cfg   *config.Config
	log   *zap.Logger
	store *data.Store

	httpServer *http.Server
	wsServer   *http.Server
}

// New builds the application from its configuration.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	var headers data.HeaderIndex
	if cfg.Database.HeaderIndex == "postgres" {
		idx, err := pgheaders.Open(cfg.Database.PostgresDSN, logger.Named("pgheaders"))
		if err != nil {
			return nil, fmt.Errorf("open header index: %w", err)
		}
		headers = idx
	}

	store, err := data.NewStore(cfg.Database.Path, data.Options{
		Compression: cfg.Database.Compression,
		CacheSize:   cfg.Database.CacheSize,
		Headers:     headers,
		Logger:      logger.Named("store"),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	registry := rpc.NewRegistry()
	registry.Register("amm_info", ammhandlers.NewInfoHandler(store, logger.Named("amm_info")))
	registry.Register("ledger", ledgerhandlers.NewHandler(store))
	registry.Register("server_info", serverhandlers.NewInfoHandler(store))
	registry.Register("ping", serverhandlers.NewPingHandler())

	rpcServer := rpc.NewServer(registry, cfg.Server.RequestTimeout, logger.Named("rpc"))
	wsServer := rpc.NewWebSocketServer(rpcServer, logger.Named("ws"))

	return &App{
		cfg:   cfg,
		log:   logger,
		store: store,
		httpServer: &http.Server{
			Addr:    cfg.Server.HTTPAddr,
			Handler: rpcServer,
		},
		wsServer: &http.Server{
			Addr:    cfg.Server.WSAddr,
			Handler: wsServer,
		},
	}, nil
}

// Store exposes the ledger store, for ingestion tooling.
func (a *App) Store() *data.Store {
	return a.store
}

// Run serves both transports until the context is canceled, then shuts
// down cleanly.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("json-rpc listening", zap.String("addr", a.cfg.Server.HTTPAddr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("json-rpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.log.Info("websocket listening", zap.String("addr", a.cfg.Server.WSAddr))
		if err := a.wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")
		a.httpServer.Shutdown(context.Background())
		a.wsServer.Shutdown(context.Background())
		return nil
	})

	err := g.Wait()
	if closeErr := a.store.Close(); err == nil {
		err = closeErr
	}
	return err
}
