package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/venuepulse/ledger/internal/auth"
	"github.com/venuepulse/ledger/internal/scheduler"
	"github.com/venuepulse/ledger/internal/server"
	"github.com/venuepulse/ledger/internal/service"
	"github.com/venuepulse/ledger/internal/storage/sqlite"
	"github.com/venuepulse/ledger/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Invalid duration, using fallback", "key", key, "value", value, "fallback", fallback)
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/ledger.db")
	addr := getEnv("LISTEN_ADDR", ":8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	tokenDuration := getDurationEnv("TOKEN_DURATION", 24*time.Hour)
	schedulerInterval := getDurationEnv("SCHEDULER_INTERVAL", time.Minute)
	poolPeriod := getDurationEnv("POOL_PERIOD", 7*24*time.Hour)

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	// The rail hook is nil here: payouts are recorded in the ledger and
	// disbursed out of band. Wiring a PayPal or bank rail means passing a
	// RailFunc that calls it with the payout ID as the idempotency key.
	payouts := service.NewPayoutService(store, nil)
	purchases := service.NewPurchaseService(store)
	pool := service.NewPoolService(store)

	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := server.New(store, purchases, payouts, pool, authenticator, jwtManager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(pool, schedulerInterval, poolPeriod)
	go sched.Run(ctx)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Ledger server starting", "address", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}
}
