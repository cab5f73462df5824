package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/civicai/backend/internal/classify"
	"github.com/civicai/backend/internal/config"
	"github.com/civicai/backend/internal/db"
	"github.com/civicai/backend/internal/events"
	"github.com/civicai/backend/internal/geocode"
	httpapi "github.com/civicai/backend/internal/http"
	"github.com/civicai/backend/internal/memstore"
	"github.com/civicai/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "civicai-backend").Logger()

	ctx := context.Background()

	var store service.Store
	if cfg.DatabaseURL == "" {
		mem := memstore.New()
		if cfg.SeedDemo {
			mem.Seed()
		}
		store = mem
		logger.Info().Msg("using in-memory store")
	} else {
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer pg.Close()
		store = pg
	}

	// an unmapped category must fail here, not mid-request
	routes, err := service.NewRoutingTable(service.DefaultCategoryMap())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid routing table")
	}

	var classifier classify.Classifier
	if cfg.ClassifierURL == "" {
		classifier = classify.Mock{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock classifier")
	} else {
		classifier = classify.HTTP{BaseURL: cfg.ClassifierURL}
	}

	bus := events.NewBus()
	bus.Subscribe(func(e events.Event) {
		logger.Info().
			Str("signal", e.Signal).
			Str("issue_id", e.Notification.IssueID).
			Str("department", e.Notification.Department).
			Msg("event")
	})
	publisher := events.Fanout{bus}
	if cfg.RedisAddr != "" {
		client, err := events.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		publisher = append(publisher, events.NewRedisPublisher(client))
	}

	coins := &service.CoinService{Store: store}
	lifecycle := &service.LifecycleService{
		Store:      store,
		Classifier: classifier,
		Routes:     routes,
		Coins:      coins,
		Events:     publisher,
		Geocoder:   &geocode.NominatimGeocoder{UserAgent: cfg.GeocoderUserAgent},
		Country:    cfg.CountryDefault,
		Logger:     logger,
	}
	notifications := &service.NotificationService{Store: store}

	router := httpapi.Router(cfg, store, lifecycle, notifications, coins, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
