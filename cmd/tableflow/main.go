package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tableflow/internal/activitylog"
	"tableflow/internal/app/floor"
	"tableflow/internal/breaks"
	"tableflow/internal/config"
	"tableflow/internal/gamingday"
	"tableflow/internal/idempotency"
	"tableflow/internal/kvstore"
	"tableflow/internal/layout"
	"tableflow/internal/logging"
	"tableflow/internal/tables"
	httptransport "tableflow/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Floor.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Floor.Timezone).Msg("load timezone failed")
	}
	cal := gamingday.New(cfg.Floor.DayStartHour, cfg.Floor.DayEndHour, loc)
	schedule := breaks.Schedule{
		Play:       cfg.Floor.PlayDuration,
		Break:      cfg.Floor.BreakDuration,
		Warning:    cfg.Floor.WarningThreshold,
		TrialBlock: cfg.Floor.TrialBlock,
	}
	if err := schedule.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid break schedule")
	}
	floorLayout, err := layout.Load(cfg.Floor.LayoutFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Floor.LayoutFile).Msg("load layout failed")
	}

	kv, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("backend", string(cfg.Store.Backend)).Msg("store init failed")
	}
	defer kv.Close()

	alog := activitylog.New(kv, cal)
	store := tables.NewStore(kv, alog, idempotency.NewGuard(), schedule, floorLayout)
	svc := floor.NewService(store, alog, cal, schedule, floor.WithTickInterval(cfg.Server.TickInterval))
	if err := svc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("restore tables failed")
	}
	log.Info().
		Int("tables", len(floorLayout.Tables)).
		Str("backend", string(cfg.Store.Backend)).
		Str("gaming_day", cal.KeyOf(time.Now())).
		Msg("floor ready")

	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		svc.Run(ctx)
	}()

	r := httptransport.NewRouter(svc, kv, cfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
		stop()
	}
	<-tickDone
	svc.Tick(context.Background(), time.Now())
	log.Info().Msg("shutdown complete")
}
