package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/snapspeak/internal/api"
	"github.com/satriahrh/snapspeak/internal/app"
	"github.com/satriahrh/snapspeak/internal/config"
	"github.com/satriahrh/snapspeak/internal/logger"
	"github.com/satriahrh/snapspeak/internal/metrics"
	"github.com/satriahrh/snapspeak/internal/websocket"
	"github.com/satriahrh/snapspeak/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger settings come from the config, so this one goes to stderr
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
	log.Info("Server exited")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize adapters
	visionModel, err := app.NewVisionModel(ctx, cfg, log)
	if err != nil {
		return err
	}
	textToSpeech, err := app.NewTextToSpeech(cfg, log)
	if err != nil {
		return err
	}
	sharedCamera, err := app.NewSharedCamera(cfg, log)
	if err != nil {
		return err
	}

	// Initialize usecase services
	describer, err := usecase.NewDescriber(visionModel, usecase.DescriberConfig{
		Prompt:  cfg.AnalysisPrompt,
		Capture: cfg.Capture(),
		Timeout: cfg.AnalysisTimeout,
	}, m, log)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(websocket.HubConfig{
		Describer:     describer,
		TTS:           textToSpeech,
		Camera:        sharedCamera,
		MaxFrameBytes: cfg.MaxFrameBytes,
		Metrics:       m,
	}, log)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, api.Dependencies{
		Hub:           hub,
		Describer:     describer,
		MaxFrameBytes: cfg.MaxFrameBytes,
		Metrics:       m,
		Gatherer:      registry,
	}, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("Server started",
			zap.String("port", cfg.Port),
			zap.String("vision", visionModel.Name()),
			zap.String("camera", cfg.CameraBackend),
			zap.String("tts", cfg.TTSBackend))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Server is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
