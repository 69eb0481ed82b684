package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbridge/portfolio_engine/config"
	"github.com/finbridge/portfolio_engine/data"
	"github.com/finbridge/portfolio_engine/data/cache"
	"github.com/finbridge/portfolio_engine/internal/externalApi/marketApi"
	"github.com/finbridge/portfolio_engine/internal/externalApi/portfolioApi"
	"github.com/finbridge/portfolio_engine/internal/reportGenerator/xlsxGenerator"
	"github.com/finbridge/portfolio_engine/internal/service/checkoutService"
	"github.com/finbridge/portfolio_engine/internal/service/valuationService"
	"github.com/finbridge/portfolio_engine/internal/transport/rest"
	"github.com/finbridge/portfolio_engine/internal/transport/rest/middleware"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	marketApiClient := marketApi.New(cfg)
	portfolioApiClient := portfolioApi.New(cfg)

	valuationSrv := valuationService.New(cfg, portfolioApiClient, marketApiClient, redisCache)
	checkoutSrv := checkoutService.New(portfolioApiClient, valuationSrv)

	reportGenerator := xlsxGenerator.New()

	ctrl := rest.NewController(valuationSrv, checkoutSrv, reportGenerator)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := router.Group("/api/v1")
	api.GET("/portfolio/:userID/valuation", ctrl.GetValuation)
	api.GET("/portfolio/:userID/holdings", ctrl.GetConsolidatedHoldings)
	api.GET("/portfolio/:userID/statement", ctrl.GetStatement)
	api.POST("/checkout/discount", ctrl.ApplyDiscount)
	api.POST("/withdrawal/estimate", ctrl.EstimateWithdrawal)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", slog.String("err", err.Error()))
		}
	}()

	slog.Info("server started", slog.Int("port", cfg.HTTP.Port))

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
