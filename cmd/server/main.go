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

	"github.com/mpoksari/catering-api/internal/catalog"
	"github.com/mpoksari/catering-api/internal/config"
	"github.com/mpoksari/catering-api/internal/events"
	"github.com/mpoksari/catering-api/internal/logging"
	"github.com/mpoksari/catering-api/internal/member"
	"github.com/mpoksari/catering-api/internal/pricing"
	"github.com/mpoksari/catering-api/internal/router"
	"github.com/mpoksari/catering-api/internal/storage"
	"github.com/mpoksari/catering-api/internal/ws"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer backend.Close()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("close publisher")
		}
	}()

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	engine := pricing.NewEngine(catalog.Default())
	members := member.NewService(backend.Store, engine, publisher, hub, logger,
		member.WithWhatsAppNumber(cfg.WhatsAppNumber),
	)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(cfg, router.Deps{
			Engine:  engine,
			Members: members,
			Hub:     hub,
			Checks:  backend.Checks,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}
