// Package main, tepki reaction servisinin giriş noktasıdır.
//
// Bu dosyanın görevi Dependency Injection "wire-up":
//  1. Config, logger, i18n
//  2. Store (SQLite veya MongoDB) ve repository'ler
//  3. App event bus (NATS veya in-process)
//  4. WebSocket Hub
//  5. Service'ler, handler'lar, route'lar
//  6. HTTP server ve graceful shutdown
//
// Global değişken YOK, her şey burada oluşturulup birbirine bağlanır.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/akinalp/tepki/apps"
	"github.com/akinalp/tepki/config"
	"github.com/akinalp/tepki/pkg/i18n"
	"github.com/akinalp/tepki/pkg/logger"
	"github.com/akinalp/tepki/pkg/metrics"
	"github.com/akinalp/tepki/pkg/ratelimit"
	"github.com/akinalp/tepki/ws"
)

func main() {
	issueFor := flag.String("issue-token", "", "verilen kullanıcı id'si için access token bas ve çık")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "-issue-token ile basılan token'ın süresi")
	flag.Parse()

	// ─── 1. Config + Logger ───
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	mainLog := logger.Component("main")

	// ─── 2. i18n ───
	locales, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to open embedded locales")
	}
	if err := i18n.Load(locales); err != nil {
		mainLog.Fatal().Err(err).Msg("failed to load i18n translations")
	}

	// ─── 3. Store ───
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		mainLog.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open store")
	}
	defer store.Close()

	if *issueFor != "" {
		if err := issueToken(ctx, cfg, store.Repos, *issueFor, *tokenTTL); err != nil {
			mainLog.Fatal().Err(err).Msg("failed to issue token")
		}
		return
	}

	// ─── 4. Metrics ───
	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	// ─── 5. App event bus ───
	bus, closeBus, err := openBus(cfg)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to connect app event bus")
	}
	defer closeBus()

	// ─── 6. WebSocket Hub ───
	hub := ws.NewHub()
	go hub.Run()

	// ─── 7. Services ───
	svcs := initServices(cfg, store.Repos, hub, bus, m)
	registerHubCallbacks(hub, svcs.Permission)
	registerReactionHooks(svcs.Hooks)

	// ─── 8. Handlers + Routes ───
	limiter := ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, 10*time.Minute)
	defer limiter.Stop()
	defer svcs.Permission.Close()
	defer svcs.Emoji.Close()

	h := initHandlers(svcs, hub, store.Health, limiter)

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs, store.Repos, m)

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		AllowCredentials: true,
	})

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		mainLog.Info().Str("addr", cfg.Server.Addr()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLog.Fatal().Err(err).Msg("server error")
		}
	}()

	<-done
	mainLog.Info().Msg("shutting down")

	// Önce yeni request kabulünü durdur, sonra uçuştaki yan etkileri bekle,
	// en son WebSocket bağlantılarını kapat.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("forced shutdown")
	}

	if !svcs.Runner.WaitTimeout(5 * time.Second) {
		mainLog.Warn().Msg("background tasks still running at shutdown")
	}

	hub.Shutdown()
	log.Info().Str("component", "main").Msg("server stopped gracefully")
}

// openBus, NATS URL'i verilmişse NATS'a bağlanır, yoksa in-process bus kullanır.
func openBus(cfg *config.Config) (apps.Bus, func(), error) {
	if cfg.NATS.URL == "" {
		local := apps.NewLocalBus()
		registerLocalApps(local)
		return local, func() {}, nil
	}

	nb, err := apps.ConnectNATSBus(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	if err != nil {
		return nil, nil, err
	}
	return nb, func() {
		if err := nb.Close(); err != nil {
			log.Warn().Err(err).Str("component", "apps").Msg("nats drain failed")
		}
	}, nil
}
