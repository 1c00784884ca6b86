package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"crypto-paper-trader/internal/interfaces"
	"crypto-paper-trader/internal/ledger"
	"crypto-paper-trader/internal/ledger/ledgerobs"
	"crypto-paper-trader/internal/logger"
	"crypto-paper-trader/internal/oracle"
	"crypto-paper-trader/internal/store"
	"crypto-paper-trader/internal/trace"
	"crypto-paper-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("TRADER_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old journal files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

func initializeOracle(cfg *store.Config) *oracle.Client {
	return oracle.New(oracle.Params{
		BaseURL:       cfg.Oracle.BaseURL,
		Timeout:       time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
		CacheTTL:      time.Duration(cfg.Oracle.CacheTTLSeconds) * time.Second,
		FallbackPrice: cfg.Oracle.FallbackPrice,
		Pairs:         cfg.Oracle.Pairs,
	})
}

// initializeLedger builds the session account, restoring a snapshot
// when one exists, and wraps it with observability middleware.
func initializeLedger(ctx context.Context, cfg *store.Config, prices interfaces.PriceSource) (interfaces.Ledger, *ledger.Account) {
	params := ledger.Params{
		StartingBalance: cfg.StartingBalance,
		Epsilon:         cfg.Epsilon,
		Prices:          prices,
	}

	var acct *ledger.Account
	if st, err := store.LoadAccount(cfg.SnapshotPath); err != nil {
		logger.Warn(ctx, "Failed to load account snapshot, starting fresh", "error", err, "path", cfg.SnapshotPath)
	} else if st != nil {
		acct = ledger.Restore(*st, params)
		logger.Info(ctx, "Account restored from snapshot",
			"path", cfg.SnapshotPath,
			"cash_balance", st.CashBalance,
			"positions", len(st.Positions),
			"trades", len(st.Trades),
		)
	}
	if acct == nil {
		acct = ledger.NewAccount(params)
		logger.Info(ctx, "Fresh account created", "starting_balance", cfg.StartingBalance)
	}

	return ledgerobs.Wrap(acct), acct
}
