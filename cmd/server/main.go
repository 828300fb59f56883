package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gofunds/internal/adapter/http"
	"github.com/iho/gofunds/internal/adapter/http/handler"
	"github.com/iho/gofunds/internal/adapter/http/middleware"
	"github.com/iho/gofunds/internal/adapter/notification"
	"github.com/iho/gofunds/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gofunds/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gofunds/internal/adapter/repository/redis"
	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/auth"
	"github.com/iho/gofunds/internal/infrastructure/config"
	"github.com/iho/gofunds/internal/infrastructure/dispatcher"
	"github.com/iho/gofunds/internal/infrastructure/logger"
	"github.com/iho/gofunds/internal/infrastructure/metrics"
	"github.com/iho/gofunds/internal/infrastructure/postgres"
	"github.com/iho/gofunds/internal/infrastructure/redis"
	"github.com/iho/gofunds/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

// storage is the set of repositories behind the use cases.
type storage struct {
	txManager     usecase.TransactionManager
	customers     usecase.CustomerRepository
	funds         usecase.FundRepository
	subscriptions usecase.SubscriptionRepository
	transactions  usecase.TransactionRepository
	ledger        usecase.LedgerRepository
	outbox        usecase.NotificationOutbox
	checks        []handler.HealthCheck
	close         func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		log.Warn().Msg("using in-memory storage; state is lost on restart")
		return &storage{
			txManager:     memory.NewTxManager(store),
			customers:     memory.NewCustomerRepository(store),
			funds:         memory.NewFundRepository(store),
			subscriptions: memory.NewSubscriptionRepository(store),
			transactions:  memory.NewTransactionRepository(store),
			ledger:        memory.NewLedgerRepository(store),
			outbox:        memory.NewNotificationOutbox(store),
			close:         func() {},
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, err
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		txManager:     postgresRepo.NewTxManager(pool),
		customers:     postgresRepo.NewCustomerRepository(pool),
		funds:         postgresRepo.NewFundRepository(pool),
		subscriptions: postgresRepo.NewSubscriptionRepository(pool),
		transactions:  postgresRepo.NewTransactionRepository(pool),
		ledger:        postgresRepo.NewLedgerRepository(pool),
		outbox:        postgresRepo.NewNotificationOutbox(pool),
		checks:        []handler.HealthCheck{{Name: "database", Check: pool.Ping}},
		close:         pool.Close,
	}, nil
}

// buildGateway assembles the notification channels selected by configuration.
func buildGateway(cfg *config.Config, log zerolog.Logger) *notification.Gateway {
	var (
		email notification.EmailChannel
		sms   notification.SMSChannel
	)

	switch cfg.NotifyChannel {
	case config.NotifySMTP:
		email = notification.NewEmailSender(notification.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			FromAddress: cfg.SMTPFrom,
			FromName:    cfg.SMTPFromName,
		})
	default:
		email = notification.NewLogChannel(log)
	}

	if cfg.SMSWebhookURL != "" {
		sms = notification.NewSMSWebhook(cfg.SMSWebhookURL, cfg.SMSWebhookToken, cfg.NotifySendTimeout)
	} else {
		sms = notification.NewLogChannel(log)
	}

	return notification.NewGateway(email, sms, log)
}

type seedFund struct {
	name        string
	description string
	category    domain.FundCategory
	minimum     int64
}

var defaultFunds = []seedFund{
	{"FPV_BTG_PACTUAL_RECAUDADORA", "Voluntary pension fund", domain.FundCategoryConservativeFixedIncome, 75000},
	{"FPV_BTG_PACTUAL_ECOPETROL", "Voluntary pension fund", domain.FundCategoryConservativeFixedIncome, 125000},
	{"DEUDAPRIVADA", "Collective investment fund", domain.FundCategoryModerateMixed, 50000},
	{"FDO-ACCIONES", "Collective investment fund", domain.FundCategoryAggressiveEquity, 250000},
	{"FPV_BTG_PACTUAL_DINAMICA", "Voluntary pension fund", domain.FundCategoryModerateMixed, 100000},
}

// seedFunds creates the default catalogue when no fund exists yet.
func seedFunds(ctx context.Context, funds *usecase.FundUseCase) (int, error) {
	existing, err := funds.ListFunds(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, f := range defaultFunds {
		if _, err := funds.CreateFund(ctx, usecase.CreateFundInput{
			Name:          f.name,
			Description:   f.description,
			Category:      f.category,
			MinimumAmount: decimal.NewFromInt(f.minimum),
		}); err != nil {
			return 0, fmt.Errorf("seed fund %s: %w", f.name, err)
		}
	}
	return len(defaultFunds), nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var (
		funds            = st.funds
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClientWithConfig(ctx, redis.Config{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		funds = redisRepo.NewFundCache(st.funds, redisClient, cfg.FundCacheTTL, log).WithMetrics(m)
		st.checks = append(st.checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log).WithMetrics(m)

	customerUC := usecase.NewCustomerUseCase(st.txManager, st.customers, st.transactions, idGen).
		WithRetrier(retrier).
		WithMetrics(m).
		WithLogger(log)
	fundUC := usecase.NewFundUseCase(funds, idGen).WithLogger(log)
	historyUC := usecase.NewHistoryUseCase(st.customers, st.transactions)
	reconciliationUC := usecase.NewReconciliationUseCase(st.ledger).WithMetrics(m).WithLogger(log)

	d := dispatcher.New(dispatcher.Config{
		Outbox:      st.outbox,
		Gateway:     buildGateway(cfg, log),
		Logger:      log,
		Metrics:     m,
		BatchSize:   cfg.NotifyBatchSize,
		Concurrency: cfg.NotifyConcurrency,
		Interval:    cfg.NotifyInterval,
		Lease:       cfg.NotifyLease,
		SendTimeout: cfg.NotifySendTimeout,
	})

	subscriptionUC := usecase.NewSubscriptionUseCase(
		st.txManager, st.customers, funds, st.subscriptions, st.transactions, st.outbox, idGen,
	).WithRetrier(retrier).WithSignal(d).WithMetrics(m).WithLogger(log)

	if cfg.StorageDriver == config.StorageMemory {
		n, err := seedFunds(ctx, fundUC)
		if err != nil {
			return err
		}
		log.Info().Int("funds", n).Msg("seeded fund catalogue")
	}

	opts := []handler.Option{handler.WithLogger(log)}
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)

	routerCfg := httpAdapter.RouterConfig{
		CustomerHandler:     handler.NewCustomerHandler(customerUC, subscriptionUC, historyUC, opts...),
		FundHandler:         handler.NewFundHandler(fundUC, opts...),
		SubscriptionHandler: handler.NewSubscriptionHandler(subscriptionUC, historyUC, opts...),
		LedgerHandler:       handler.NewLedgerHandler(reconciliationUC, historyUC, opts...),
		HealthHandler:       handler.NewHealthHandler(st.checks...),
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		RateLimiter:         rl,
		Metrics:             m,
		Logger:              log,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("JWT authentication enabled")
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := d.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("notification dispatcher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rl.RunCleanup(gctx, time.Minute, 10*time.Minute)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
