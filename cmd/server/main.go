// Package main provides the entry point for the citation verification
// HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/refaudit/citation-verification-service/internal/config"
	"github.com/refaudit/citation-verification-service/internal/lexical"
	"github.com/refaudit/citation-verification-service/internal/observability"
	"github.com/refaudit/citation-verification-service/internal/registries/crossref"
	"github.com/refaudit/citation-verification-service/internal/registries/doiresolver"
	"github.com/refaudit/citation-verification-service/internal/registries/openlibrary"
	"github.com/refaudit/citation-verification-service/internal/registries/webprobe"
	"github.com/refaudit/citation-verification-service/internal/server"
	"github.com/refaudit/citation-verification-service/internal/verify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("citation-verification-service server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	// Build the external registry clients.
	resolver := doiresolver.New(doiresolver.Config{
		BaseURL:   cfg.Registries.DOIResolver.BaseURL,
		Timeout:   cfg.Registries.DOIResolver.Timeout,
		RateLimit: cfg.Registries.DOIResolver.RateLimit,
		BurstSize: cfg.Registries.DOIResolver.BurstSize,
		Metrics:   metrics,
	})
	works := crossref.New(crossref.Config{
		BaseURL:   cfg.Registries.CrossRef.BaseURL,
		Email:     cfg.Registries.Email,
		Timeout:   cfg.Registries.CrossRef.Timeout,
		RateLimit: cfg.Registries.CrossRef.RateLimit,
		BurstSize: cfg.Registries.CrossRef.BurstSize,
		Metrics:   metrics,
	})
	books := openlibrary.New(openlibrary.Config{
		BaseURL:   cfg.Registries.OpenLibrary.BaseURL,
		Timeout:   cfg.Registries.OpenLibrary.Timeout,
		RateLimit: cfg.Registries.OpenLibrary.RateLimit,
		BurstSize: cfg.Registries.OpenLibrary.BurstSize,
		Metrics:   metrics,
	})
	prober := webprobe.New(webprobe.Config{
		Timeout:   cfg.Registries.WebProbe.Timeout,
		RateLimit: cfg.Registries.WebProbe.RateLimit,
		BurstSize: cfg.Registries.WebProbe.BurstSize,
		Metrics:   metrics,
	})

	// Assemble the verification pipeline.
	abbrev := lexical.NewResolver(cfg.Abbreviations)
	authenticity := verify.NewAuthenticityChecker(resolver, works, books, prober)
	content := verify.NewContentChecker(works, abbrev)
	verifier := verify.NewVerifier(authenticity, content, verify.VerifierConfig{
		CitationDelay:     cfg.Verification.CitationDelay,
		Workers:           cfg.Verification.Workers,
		MinCitationLength: cfg.Verification.MinCitationLength,
	}, logger, metrics)

	httpCfg := server.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBatchBytes:   cfg.Server.MaxBatchBytes,
		DefaultStyle:    verify.Style(cfg.Verification.DefaultStyle),
	}
	httpSrv := server.NewServer(httpCfg, verifier, logger)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("citation-verification-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down citation-verification-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("citation-verification-service shutdown complete")
	return nil
}
