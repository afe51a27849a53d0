// Package main provides the entry point for the TradePilot API server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tradepilot/tradepilot/internal/api"
	"github.com/tradepilot/tradepilot/internal/app"
	"github.com/tradepilot/tradepilot/internal/health"
	"github.com/tradepilot/tradepilot/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

var (
	configFile string
	migrate    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending database migrations before serving")
}

var rootCmd = &cobra.Command{
	Use:          "tradepilot-api",
	Short:        "Serve the TradePilot HTTP API",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := app.LoadConfig(ctx, configFile)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.Options{Migrate: migrate})
	if err != nil {
		return err
	}
	defer a.Close()

	appLog := a.Logger
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     app.Version,
		"commit":      app.GitCommit,
	}).Info("TradePilot API starting")

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     app.Version,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		Checks: map[string]health.CheckFunc{
			"database": health.PingCheck(a.DB),
		},
	})
	healthServer.Start(ctx)

	var sched *scheduler.Scheduler
	if cfg.Blog.SchedulerEnabled {
		sched = scheduler.NewScheduler(a.Blog, appLog)
		if err := sched.ScheduleBlogGeneration(cfg.Blog.Schedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Dependencies{
		Strategy:  a.Strategy,
		Blog:      a.Blog,
		Chart:     a.Chart,
		Bots:      a.Repos.Bot,
		Backtests: a.Repos.Backtest,
		Posts:     a.Repos.BlogPost,
		Logger:    appLog,
	}
	if cfg.Metrics.Enabled {
		deps.MetricsPath = cfg.Metrics.Path
	}
	router := api.NewRouter(deps)

	// Write deadlines are set per request so the chat stream route can stay open.
	srv := &http.Server{
		Addr:        cfg.ListenAddr(),
		Handler:     api.WithWriteTimeout(router, time.Duration(cfg.Server.WriteTimeoutSeconds)*time.Second, api.ChatStreamPath),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	healthServer.SetReady(true)

	select {
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	case err := <-errCh:
		appLog.WithError(err).Error("HTTP server failed")
		return err
	}

	healthServer.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("HTTP server shutdown failed")
	}

	appLog.Info("TradePilot API shut down")
	return nil
}
