package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/me/sheetsync/internal/config"
	"github.com/me/sheetsync/internal/logging"
	"github.com/me/sheetsync/internal/scheduler"
	"github.com/me/sheetsync/internal/server"
	"github.com/me/sheetsync/internal/sheets"
	"github.com/me/sheetsync/internal/sink"
)

func main() {
	cfg := config.DefaultServerConfig()

	configFile := flag.String("config", "", "Path to a YAML or TOML config file")
	addr := flag.String("addr", "", "Listen address (overrides config and SHEETSYNC_ADDR)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (text, json)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	// Precedence: defaults, then config file, then environment, then flags.
	if *configFile != "" {
		if err := config.LoadFile(*configFile, &cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "environment: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	logger, logCloser := logging.NewLoggerWithFile(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cfg.LogFile)
	defer logCloser.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fetcher := sheets.NewClient(logger, sheets.WithDefaultSheet(cfg.DefaultSheetName))
	router := sink.NewDefaultRouter(cfg.SQLiteDir, logger)
	defer router.Close()

	ctrl := scheduler.NewController(fetcher, router, scheduler.Config{
		MinInterval:  time.Minute,
		MaxInterval:  time.Duration(cfg.MaxSyncInterval) * time.Minute,
		StopTimeout:  cfg.StopTimeout,
		CycleTimeout: cfg.CycleTimeout,
		HistorySize:  cfg.HistorySize,
	}, scheduler.NewMetrics(reg), logger)

	srv := server.New(cfg, ctrl, fetcher, ctrl.Executor(), logger,
		server.WithDBTypes(router.Supports),
		server.WithRegistry(reg),
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "version", server.Version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Stop the auto-sync job before the HTTP server so no cycle outlives it.
	if err := ctrl.Shutdown(shutdownCtx); err != nil {
		logger.Error("auto-sync stop error", "error", err)
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
