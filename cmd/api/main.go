package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/example/nexbank/internal/account"
	"github.com/example/nexbank/internal/api"
	"github.com/example/nexbank/internal/auth"
	"github.com/example/nexbank/internal/chat"
	"github.com/example/nexbank/internal/config"
	"github.com/example/nexbank/internal/ledger"
	"github.com/example/nexbank/internal/loan"
	"github.com/example/nexbank/internal/security"
	"github.com/example/nexbank/pkg/audit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		accountStore account.Store
		ledgerStore  ledger.Store
		loanStore    loan.Store
		chatStore    chat.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		accountStore = &account.PostgresStore{Pool: pool}
		ledgerStore = ledger.NewPostgresStore(pool)
		loanStore = loan.NewPostgresStore(pool)
		chatStore = chat.NewPostgresStore(pool)
	} else {
		// No database configured: run the whole bank in memory. Good for
		// demos, useless for anything durable.
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		mem := ledger.NewMemoryStore()
		accountStore = mem
		ledgerStore = mem
		loanStore = loan.NewMemoryStore()
		chatStore = chat.NewMemoryStore()
	}

	var auditSink audit.Sink
	if cfg.AuditDBPath != "" {
		sink, err := audit.OpenSQLiteSink(cfg.AuditDBPath)
		if err != nil {
			logger.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditSink = sink
	}
	auditor := audit.NewChainLogger(auditSink, func(err error) {
		logger.Error("failed to persist audit entry", "error", err)
	})

	var rateLimiter *security.RedisTokenBucket
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		rateLimiter = &security.RedisTokenBucket{
			Redis:      redisClient,
			Prefix:     "nexbank_api",
			Capacity:   getenvInt("API_RATE_LIMIT_CAPACITY", 20),
			RefillRate: float64(getenvInt("API_RATE_LIMIT_REFILL_PER_SEC", 10)),
		}
	}

	tokens := &auth.TokenIssuer{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    auth.DefaultTokenTTL,
	}

	accounts := account.NewService(accountStore)
	ledgerSvc := ledger.NewService(ledgerStore, accounts, logger)
	loans := loan.NewService(loanStore, ledgerSvc, logger)
	chats := chat.NewService(chatStore)

	router, err := api.NewRouter(api.Dependencies{
		Logger:       logger,
		Tokens:       tokens,
		Accounts:     accounts,
		Ledger:       ledgerSvc,
		Loans:        loans,
		Chat:         chats,
		Auditor:      auditor,
		RateLimiter:  rateLimiter,
		MaxBodyBytes: int64(getenvInt("API_MAX_BODY_BYTES", 1<<20)),
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("banking api listening", "addr", cfg.ListenAddr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
