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

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/creditledger/internal/auth"
	"github.com/mmynk/creditledger/internal/config"
	"github.com/mmynk/creditledger/internal/metrics"
	"github.com/mmynk/creditledger/internal/middleware"
	"github.com/mmynk/creditledger/internal/service"
	"github.com/mmynk/creditledger/internal/storage/sqlite"
	"github.com/mmynk/creditledger/pkg/api/apiconnect"
	"github.com/mmynk/creditledger/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	ledger := service.NewLedger(store,
		service.WithBalancePolicy(cfg.BalancePolicy),
		service.WithMetrics(m),
	)
	slog.Info("Ledger ready", "balance_policy", cfg.BalancePolicy, "request_ttl", cfg.RequestTTL)

	validate := middleware.NewValidator()
	mux := http.NewServeMux()

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, slog.Default()),
		connect.WithInterceptors(
			middleware.MetricsInterceptor(m),
			middleware.LoggingInterceptor(nil),
			middleware.ValidationInterceptor(validate),
		),
	)
	mux.Handle(authPath, authHandler)

	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(
		service.NewLedgerService(ledger),
		connect.WithInterceptors(
			middleware.MetricsInterceptor(m),
			middleware.RequireAuth(jwtManager),
			middleware.LoggingInterceptor(nil),
			middleware.ValidationInterceptor(validate),
		),
	)
	mux.Handle(ledgerPath, ledgerHandler)

	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return service.NewRequestExpirer(ledger, cfg.RequestTTL, cfg.ExpiryInterval).Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Limit-Kind, Limit, Offending-Value")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
