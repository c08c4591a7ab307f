package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	robotgateway "github.com/robotalk-labs/robot-gateway"
	"github.com/robotalk-labs/robot-gateway/internal/chatlog"
	"github.com/robotalk-labs/robot-gateway/internal/logging"
	"github.com/robotalk-labs/robot-gateway/internal/ratelimit"
	"github.com/robotalk-labs/robot-gateway/internal/tts"
	"github.com/robotalk-labs/robot-gateway/internal/version"
	"github.com/robotalk-labs/robot-gateway/providers"
)

// serve wires the service from cfg plus environment credentials and blocks
// until the context is cancelled or the listener fails.
func serve(ctx context.Context, cfg robotgateway.Config) error {
	log := logging.Logger

	svc := robotgateway.NewService(cfg)

	if err := registerProviders(svc); err != nil {
		return err
	}
	if len(svc.Providers()) == 0 {
		log.Warn("no provider API keys set, every chat will use canned replies",
			"hint", "set ANTHROPIC_API_KEY, OPENAI_API_KEY, or BEDROCK_REGION")
	}

	svc.SetSynthesizer(buildSynthesizer(cfg))

	history, closeLog, err := openChatLog(svc, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeLog()

	store := ratelimit.NewStore(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	var corsOrigins []string
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsOrigins = splitAndTrim(origins)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(svc, store, history, corsOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("robogw listening",
		"version", version.Short(),
		"addr", cfg.Server.Addr,
		"providers", svc.Providers())

	select {
	case <-ctx.Done():
		log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}
}

// registerProviders adds a provider for each credential found in the
// environment. Missing keys are simply skipped so a dev box can run with a
// single provider.
func registerProviders(svc *robotgateway.Service) error {
	log := logging.Logger

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		p, err := providers.NewAnthropic(key, os.Getenv("ANTHROPIC_BASE_URL"))
		if err != nil {
			return fmt.Errorf("anthropic provider: %w", err)
		}
		svc.RegisterProvider(p)
		log.Info("provider registered", "provider", "anthropic")
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		p, err := providers.NewOpenAI(key, os.Getenv("OPENAI_BASE_URL"))
		if err != nil {
			return fmt.Errorf("openai provider: %w", err)
		}
		svc.RegisterProvider(p)
		log.Info("provider registered", "provider", "openai")
	}
	if region := os.Getenv("BEDROCK_REGION"); region != "" {
		p, err := providers.NewBedrock(region)
		if err != nil {
			return fmt.Errorf("bedrock provider: %w", err)
		}
		svc.RegisterProvider(p)
		log.Info("provider registered", "provider", "bedrock", "region", region)
	}
	return nil
}

// buildSynthesizer assembles the TTS fallback chain from the configured
// vendor order, skipping vendors whose API key is absent. Returns nil when
// no vendor is usable, which disables the voice endpoint.
func buildSynthesizer(cfg robotgateway.Config) tts.Synthesizer {
	log := logging.Logger

	var synths []tts.Synthesizer
	for _, vendor := range cfg.TTS.Vendors {
		switch vendor {
		case "elevenlabs":
			if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
				synths = append(synths, tts.NewElevenLabs(key, os.Getenv("ELEVENLABS_BASE_URL")))
				log.Info("tts vendor registered", "vendor", "elevenlabs")
			}
		case "cartesia":
			if key := os.Getenv("CARTESIA_API_KEY"); key != "" {
				synths = append(synths, tts.NewCartesia(key, os.Getenv("CARTESIA_BASE_URL")))
				log.Info("tts vendor registered", "vendor", "cartesia")
			}
		}
	}
	if len(synths) == 0 {
		log.Warn("no tts vendors usable, voice endpoint disabled")
		return nil
	}
	return tts.NewChain(log, synths...)
}

// openChatLog installs the conversation log selected by cfg and returns the
// history reader (nil when persistence is off) plus a close func.
func openChatLog(svc *robotgateway.Service, cfg robotgateway.StorageConfig) (historyLister, func(), error) {
	switch cfg.Driver {
	case "", robotgateway.DriverNone:
		return nil, func() {}, nil
	case robotgateway.DriverSQLite:
		w, err := chatlog.NewSQLiteWriter(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite chat log: %w", err)
		}
		svc.SetChatLog(w)
		return w, func() { _ = w.Close() }, nil
	case robotgateway.DriverPostgres:
		w, err := chatlog.NewPostgresWriter(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres chat log: %w", err)
		}
		svc.SetChatLog(w)
		return w, func() { _ = w.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
