package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaronzipp/officially-sus-arena/internal/config"
	"github.com/aaronzipp/officially-sus-arena/internal/handlers"
	"github.com/aaronzipp/officially-sus-arena/internal/registry"
	"github.com/aaronzipp/officially-sus-arena/internal/store"
	"github.com/aaronzipp/officially-sus-arena/internal/subject"
	"github.com/aaronzipp/officially-sus-arena/internal/telemetry"
)

const serviceName = "officially-sus-arena"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Printf("Tracing disabled: %v", err)
	}
	defer shutdownTracing(context.Background())

	catalog, err := subject.LoadCatalog()
	if err != nil {
		log.Fatal("Failed to load subject catalog:", err)
	}
	log.Printf("Loaded %d round subjects", len(catalog))

	provider := subject.NewProvider(subject.Options{
		Catalog:   catalog,
		LookupURL: cfg.SubjectLookupURL,
		Timeout:   cfg.SubjectLookupTimeout,
		Enabled:   cfg.SubjectLookupEnabled,
	})

	reg := registry.New(registry.Options{
		Store:    store.NewSessionStore(),
		Subjects: provider,
		Timings: registry.Timings{
			BotThink:      cfg.BotThinkDelay,
			Resolve:       cfg.ResolveDelay,
			ResultDisplay: cfg.ResultDisplayDelay,
			HostLeftGrace: cfg.HostLeftGrace,
		},
		IdleTimeout: cfg.IdleTimeout,
	})
	go reg.RunReaper(ctx, cfg.ReapInterval)

	appCtx := &handlers.Context{
		Registry: reg,
		Config:   cfg,
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(appCtx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on http://localhost%s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Printf("Server stopped")
}
