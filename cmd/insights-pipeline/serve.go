package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/audience-pulse/insights/dashboard"
	"github.com/theimaginaryfoundation/audience-pulse/insights/metrics"
	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

const shutdownTimeout = 5 * time.Second

func serve(ctx context.Context, addr string, l stage.Layout, log *logrus.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	router := dashboard.NewRouter(dashboard.NewHandler(l, log), metrics.NewCollector())
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "base_dir": l.BaseDir}).Info("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("dashboard stopped")
	return nil
}
