// Package server wires configuration, storage, services and the HTTP
// transport into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/logging"
	"github.com/dmitrijs2005/garagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/garagekeeper/internal/server/config"
	"github.com/dmitrijs2005/garagekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/garagekeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const dbPingTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	server      *httpapi.Server
}

// OpenDB opens the pgx-backed pool for dsn and checks it is reachable.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// NewAccountService builds the account service from cfg. It is shared by the
// server and the ops CLI so both apply the same hashing and token policy.
func NewAccountService(cfg *config.Config, db *sql.DB, m repomanager.RepositoryManager) (*services.AccountService, *auth.Verifier, error) {
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}
	issuer, err := auth.NewIssuer([]byte(cfg.SecretKey), cfg.TokenValidity)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := auth.NewVerifier([]byte(cfg.SecretKey))
	if err != nil {
		return nil, nil, err
	}
	return services.NewAccountService(db, m, hasher, issuer, cfg.AdminCreateBypassesStrengthCheck), verifier, nil
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	accounts, verifier, err := NewAccountService(cfg, db, rm)
	if err != nil {
		db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "garagekeeper"),
	)
	metrics := httpapi.NewMetrics(registry)
	accounts.SetLoginObserver(metrics)

	svc := httpapi.Services{
		Accounts:    accounts,
		Cars:        services.NewCarService(db, rm),
		WorkOrders:  services.NewWorkOrderService(db, rm),
		Attachments: services.NewAttachmentService(db, rm, cfg),
	}
	guard := httpapi.NewGuard(verifier, cfg.AllowRawToken, metrics, logger)
	srv := httpapi.NewServer(cfg.ListenAddr, logger, svc, guard, metrics, cfg.AllowedOrigins)

	return &App{config: cfg, logger: logger, db: db, repomanager: rm, server: srv}, nil
}

// Run applies pending migrations and serves until SIGINT, SIGTERM or SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Shutting down...")
		return nil
	})

	return g.Wait()
}

// Main is the server entry point: it loads and validates configuration and
// runs the app. The returned code is meant for os.Exit.
func Main(ctx context.Context, args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "invalid configuration", "error", err)
		return 2
	}

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, err.Error())
		return 1
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, err.Error())
		return 1
	}
	return 0
}
