package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faucethub/faucetd/internal/api"
	"github.com/faucethub/faucetd/internal/api/middleware"
	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/db"
	"github.com/faucethub/faucetd/internal/faucet"
	"github.com/faucethub/faucetd/internal/limiter"
	"github.com/faucethub/faucetd/internal/logging"
	"github.com/faucethub/faucetd/internal/passport"
	"github.com/faucethub/faucetd/internal/registry"
	"github.com/faucethub/faucetd/internal/tx"
	"github.com/faucethub/faucetd/internal/wallet"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case "address":
		if err := runAddress(); err != nil {
			slog.Error("address error", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("faucetd %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: faucetd <command>

Commands:
  serve     Start the HTTP server
  address   Print the faucet signer address
  version   Print version information
`)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()

	slog.Info("starting faucetd",
		"version", version,
		"port", cfg.Port,
		"dbPath", cfg.DBPath,
		"logLevel", cfg.LogLevel,
		"scoreThreshold", cfg.ScoreThreshold,
		"claimWindowHours", cfg.ClaimWindowHours,
	)

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	reg, err := registry.Load(database, cfg)
	if err != nil {
		return fmt.Errorf("failed to load network registry: %w", err)
	}

	scores := passport.New(cfg)
	if !scores.Configured() {
		slog.Warn("passport oracle not configured; all score lookups will report ERROR")
	}

	limits := limiter.New(database)

	// Periodic cooldown housekeeping: expired records never block a claim,
	// purging just keeps the table from growing without bound.
	limits.PurgeExpired()
	purgeStop := make(chan struct{})
	defer close(purgeStop)
	go func() {
		ticker := time.NewTicker(config.RateLimitPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-purgeStop:
				return
			case <-ticker.C:
				limits.PurgeExpired()
			}
		}
	}()

	engine, err := setupEngine(cfg)
	if err != nil {
		return err
	}

	var disburser faucet.Disburser
	if engine != nil {
		disburser = engine
	}
	orchestrator := faucet.New(reg, scores, limits, disburser, database, cfg)

	throttle := middleware.NewThrottle(cfg.ClaimsPerMinute)
	defer throttle.Stop()

	router := api.NewRouter(api.Deps{
		Config:       cfg,
		DB:           database,
		Registry:     reg,
		Scores:       scores,
		Limits:       limits,
		Orchestrator: orchestrator,
		Throttle:     throttle,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    config.ServerReadTimeout,
		WriteTimeout:   config.ServerWriteTimeout,
		IdleTimeout:    config.ServerIdleTimeout,
		MaxHeaderBytes: config.ServerMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("initiating graceful shutdown", "timeout", config.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// setupEngine builds the disbursement engine when a signing credential is
// configured. Returns nil when it is not; the server still serves the
// informational endpoints and claims fail with a configuration message.
func setupEngine(cfg *config.Config) (*tx.Engine, error) {
	if !cfg.SignerConfigured() {
		slog.Warn("no signing credential configured; claims are disabled")
		return nil, nil
	}

	signer, err := wallet.NewSignerFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signer: %w", err)
	}

	slog.Info("faucet signer ready", "address", signer.Address().Hex())

	return tx.NewEngine(signer, tx.DialEthClient, cfg.GasBoostPercent), nil
}

func runAddress() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.SignerConfigured() {
		return fmt.Errorf("no signing credential configured (set FAUCET_PRIVATE_KEY or FAUCET_MNEMONIC_FILE)")
	}

	signer, err := wallet.NewSignerFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %w", err)
	}
	defer signer.Zero()

	fmt.Println(signer.Address().Hex())
	return nil
}
