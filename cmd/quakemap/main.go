package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	natsadapter "github.com/couchcryptid/quake-map-service/internal/adapter/nats"
	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	"github.com/couchcryptid/quake-map-service/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A bad tile token leaves the base layers blank but the data layers still
	// render, so it is only a warning.
	if cfg.MapboxValidate {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		if err := client.ValidateToken(ctx); err != nil {
			metrics.TileTokenValid.Set(0)
			logger.Warn("mapbox token rejected, base tiles may not load", "error", err)
		} else {
			metrics.TileTokenValid.Set(1)
			logger.Info("mapbox token valid")
		}
	} else if cfg.MapboxToken == "" {
		logger.Warn("MAPBOX_TOKEN not set, base tiles will not load")
	}

	var sinks []pipeline.MarkerSink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("kafka marker publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	var natsPub *natsadapter.Publisher
	if cfg.NATSEnabled() {
		natsPub, err = natsadapter.NewPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, natsPub)
		logger.Info("nats marker publishing enabled", "url", cfg.NATSURL, "subject", cfg.NATSSubject)
	}

	source := usgs.NewClient(cfg.FeedBaseURL, cfg.PlatesURL, cfg.FeedTimeout, metrics, logger)
	m := render.NewMap(cfg.Profile, mapbox.TileLayers(cfg.MapboxToken), httpadapter.DefaultSources()).
		WithRadiusPolicy(cfg.RadiusPolicy)

	p := pipeline.New(source, pipeline.FanOut(sinks...), pipeline.Settings{
		Window:        cfg.FeedWindow,
		RadiusPolicy:  cfg.RadiusPolicy,
		IncludePlates: m.HasOverlay(render.OverlayPlates),
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, m, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm-up render so readiness reflects whether the feeds are reachable.
	go func() {
		scene := p.Render(ctx)
		logger.Info("initial render complete",
			"profile", cfg.Profile,
			"window", cfg.FeedWindow,
			"markers", len(scene.Markers),
			"plates", len(scene.Plates),
		)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if natsPub != nil {
		natsPub.Close()
	}

	logger.Info("shutdown complete")
}
