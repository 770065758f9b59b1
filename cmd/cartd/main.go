package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	cartapp "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/app"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/infra/adapter"
	cartsqlite "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/infra/sqlite"
	cartsf "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/infra/storefront"
	catalogapp "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/app"
	catalogsf "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/infra/storefront"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/pkg/config"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/pkg/logger"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "cartd", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	store, err := cartsqlite.Open(cfg.CartDBPath, log)
	if err != nil {
		log.Error("cart db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer store.Close()

	// Catalog
	catalogClient := catalogsf.NewClient(cfg.StorefrontURL)
	cache := catalogapp.NewCache(catalogClient, cfg.CatalogTTL, log)

	// Cart
	catalogReader := adapter.NewCatalogReader(cache)
	couponReader := adapter.NewCouponReader(cache)

	var srv *server
	remote := cartsf.NewClient(cfg.StorefrontURL, func() string { return srv.sessionToken() })

	svc := cartapp.NewService(store, remote, catalogReader, couponReader, cartapp.Options{
		Debounce:    cfg.SyncDebounce,
		PushTimeout: cfg.PushTimeout,
		Logger:      log,
	})
	srv = newServer(svc, cache, log)

	// Warm the metadata cache for whatever survived the last run, so the
	// first projection renders with fresh prices instead of stale lines.
	go func() {
		warmCtx, warmCancel := context.WithTimeout(ctx, 15*time.Second)
		defer warmCancel()
		cart, err := store.Read(warmCtx)
		if err != nil || cart.IsEmpty() {
			return
		}
		if err := cache.Refresh(warmCtx, cart.VariantIDs()); err != nil {
			log.Debug("catalog warmup incomplete", slog.Any("err", err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("cart agent starting", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	// Teardown flush: best effort, never blocks shutdown past its grace.
	flushCtx, flushCancel := shutdown.Grace(3 * time.Second)
	svc.Flush(flushCtx)
	flushCancel()

	shutdownCtx, shutdownCancel := shutdown.Grace(10 * time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
