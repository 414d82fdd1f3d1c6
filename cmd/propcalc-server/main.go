package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/property-finance/internal/analysis"
	"github.com/iwvelando/property-finance/internal/calculator"
	"github.com/iwvelando/property-finance/internal/deal"
	"github.com/iwvelando/property-finance/internal/logging"
	"github.com/iwvelando/property-finance/internal/server"
	"github.com/iwvelando/property-finance/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func run(cfg *server.Config, logger *zap.Logger) error {
	analyzer, err := analysis.New(cfg.AnalyzerConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to configure analysis: %w", err)
	}

	var deals deal.Store = deal.NewMemoryStore()
	if cfg.Store.Path != "" {
		deals, err = deal.NewSQLiteStore(cfg.Store.Path, logger)
		if err != nil {
			return err
		}
	}
	defer func() {
		_ = deals.Close()
	}()

	var limiter *server.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = server.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		defer limiter.Stop()
	}

	httpServer := &http.Server{
		Addr: cfg.Address,
		Handler: server.NewHandler(server.Options{
			Logger:      logger,
			Registry:    calculator.Default(),
			Analyzer:    analyzer,
			Deals:       deals,
			Limiter:     limiter,
			MaxBodySize: cfg.BodySizeBytes(),
			Version:     version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting server",
			zap.String("op", "main.run"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.String("analysisProvider", cfg.Analysis.Provider),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server",
			zap.String("op", "main.run"),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
