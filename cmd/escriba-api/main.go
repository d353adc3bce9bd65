package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"escriba/internal/config"
	"escriba/internal/httpapi"
	"escriba/internal/observability"
	"escriba/internal/pipeline"
	"escriba/internal/prompt"
	"escriba/internal/transcription"
	"escriba/internal/upstream/gemini"
	"escriba/internal/upstream/groq"
)

func main() {
	// Real environment variables take precedence over .env values.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	metrics := observability.NewMetrics()

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Generation streams stay open for the life of the request, so the
	// Gemini client carries no overall timeout; the request context bounds it.
	geminiHTTP := &http.Client{Transport: transport}
	groqHTTP := &http.Client{Timeout: cfg.GroqTimeout, Transport: transport}

	geminiClient := gemini.New(cfg.GeminiBaseURL, cfg.GoogleAPIKey, geminiHTTP,
		gemini.WithObserver(metrics.UpstreamObserver("gemini")))
	groqClient := groq.New(cfg.GroqBaseURL, cfg.GroqAPIKey, groqHTTP,
		groq.WithObserver(metrics.UpstreamObserver("groq")))

	renderer, err := prompt.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "template error: %v\n", err)
		os.Exit(1)
	}

	multimodal := transcription.NewGemini(geminiClient, renderer, cfg.DefaultModel, logger)
	singleShot := transcription.NewGroq(groqClient, cfg.GroqAPIKey, cfg.GroqModel, logger)
	selector := transcription.NewSelector(multimodal, singleShot, logger, metrics)

	generator := pipeline.New(selector, pipeline.Defaults{
		Model:    cfg.DefaultModel,
		Template: cfg.DefaultTemplate,
		Language: cfg.DefaultLanguage,
		Context:  cfg.DefaultContext,
	}, logger)

	handler := httpapi.NewServer(cfg, logger, httpapi.Dependencies{
		Generator:      generator,
		Templates:      renderer,
		Upstream:       geminiClient,
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       35 * time.Second,
		// Streams outlive any fixed write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
