// @title JobMatch API
// @version 1.0
// @description Matching students with employers: portfolios, job postings, applications and career advice.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/XevilA/spu-nexus-sub000/internal/config"
	"github.com/XevilA/spu-nexus-sub000/internal/logger"
	"github.com/XevilA/spu-nexus-sub000/internal/server"
)

func gracefulShutdown(apiServer *http.Server, log logrus.FieldLogger, done chan<- struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exiting")
	done <- struct{}{}
}

func main() {
	cfg := config.Load()
	log := logger.New()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	apiServer, app, err := server.NewServer(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Warn("Failed to release resources")
		}
	}()

	done := make(chan struct{}, 1)
	go gracefulShutdown(apiServer, log, done)

	log.WithField("addr", apiServer.Addr).Info("API started")
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("HTTP server error")
		return
	}

	<-done
}
