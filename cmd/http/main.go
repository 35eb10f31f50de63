package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/awmpietro/golang-case-classification/internal/bootstrap"
	"github.com/awmpietro/golang-case-classification/internal/config"
	"github.com/awmpietro/golang-case-classification/internal/metrics"
	"github.com/awmpietro/golang-case-classification/internal/transport/httptransport"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger(os.Stdout)

	svc, closeObs, err := bootstrap.Service(cfg, logger, metrics.New())
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer closeObs()

	h := httptransport.NewHandler(svc, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httptransport.NewRouter(h, promhttp.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
