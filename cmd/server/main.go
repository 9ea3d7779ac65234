package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/edulane/survey-backend/internal/config"
	"github.com/edulane/survey-backend/internal/container"
	"github.com/edulane/survey-backend/internal/router"
)

func main() {
	c := container.New()

	handler := router.New(router.RouterConfig{
		SurveyHandler:   c.SurveyContainer.Handler,
		ResponseHandler: c.ResponseContainer.Handler,
		StatsHandler:    c.StatsContainer.Handler,
		UploadHandler:   c.UploadHandler,
		UploadDir:       c.UploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + config.Env("PORT", "8000"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		config.Logger.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	config.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.WithError(err).Error("Graceful shutdown failed")
	}
}
