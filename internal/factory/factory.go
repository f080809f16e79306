package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/deckduel/internal/config"
	"github.com/mcoot/deckduel/internal/dependencies/clock"
	"github.com/mcoot/deckduel/internal/dependencies/idgen"
	"github.com/mcoot/deckduel/internal/dependencies/random"
	"github.com/mcoot/deckduel/internal/lock"
	"github.com/mcoot/deckduel/internal/services/auth"
	"github.com/mcoot/deckduel/internal/services/catalog"
	"github.com/mcoot/deckduel/internal/services/deck"
	"github.com/mcoot/deckduel/internal/services/history"
	"github.com/mcoot/deckduel/internal/services/ledger"
	"github.com/mcoot/deckduel/internal/services/match"
	"github.com/mcoot/deckduel/internal/storage"
	"github.com/mcoot/deckduel/internal/storage/memory"
	pgstorage "github.com/mcoot/deckduel/internal/storage/postgres"
	redisstorage "github.com/mcoot/deckduel/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Locks   lock.Manager

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Services
	CatalogService *catalog.Service
	DeckService    *deck.Service
	LedgerService  *ledger.Service
	MatchService   *match.Service
	HistoryService *history.Service
	AuthService    *auth.Service

	closers []io.Closer
}

// New creates a new application with all dependencies wired, loads the card
// catalog and bootstraps the admin account if one is configured
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, closers, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	locks, lockCloser, err := openLocks(cfg, store, logger)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	if lockCloser != nil {
		closers = append(closers, lockCloser)
	}

	authCfg := auth.DefaultConfig()
	authCfg.Secret = cfg.JWTSecret
	if cfg.SessionTTL > 0 {
		authCfg.SessionDuration = cfg.SessionTTL
	}

	app := newWithDependencies(store, locks, clock.New(), idgen.New(), cfg.Rules, authCfg, logger)
	app.closers = closers

	if err := app.loadCatalog(ctx, cfg.CatalogPath, logger); err != nil {
		_ = app.Close()
		return nil, err
	}

	if cfg.AdminUsername != "" {
		created, err := app.AuthService.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("admin account created", slog.String("username", cfg.AdminUsername))
		}
	}

	return app, nil
}

func openStorage(cfg config.Config) (storage.Storage, []io.Closer, error) {
	switch cfg.StorageType {
	case "", config.StorageMemory:
		return memory.New(), nil, nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		return store, []io.Closer{store}, nil
	case config.StoragePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = cfg.PostgresDSN
		store, err := pgstorage.New(pgCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return store, []io.Closer{store}, nil
	default:
		return nil, nil, fmt.Errorf("invalid storage type %q", cfg.StorageType)
	}
}

// openLocks shares the storage's Redis client when there is one
func openLocks(cfg config.Config, store storage.Storage, logger *slog.Logger) (lock.Manager, io.Closer, error) {
	switch cfg.LockType {
	case "", config.LockLocal:
		return lock.NewLocal(), nil, nil
	case config.LockRedis:
		if rs, ok := store.(*redisstorage.Storage); ok {
			return lock.NewRedis(rs.Client(), lock.DefaultRedisConfig(), random.New(), logger), nil, nil
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		return lock.NewRedis(client, lock.DefaultRedisConfig(), random.New(), logger), client, nil
	default:
		return nil, nil, fmt.Errorf("invalid lock type %q", cfg.LockType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	locks lock.Manager,
	clk clock.Clock,
	ids idgen.Generator,
	rules config.Rules,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	catalogService := catalog.New(store, rules.NeutralFaction, logger)
	validator := deck.NewValidator(catalogService, rules.MinDeckSize)
	deckService := deck.New(store, validator, catalogService, clk, ids, rules.OperationTimeout, logger)
	ledgerService := ledger.New(store, locks, catalogService, clk, ids, ledger.Config{
		MinTopUp:         rules.MinTopUp,
		CreditUnitPrice:  rules.CreditUnitPrice,
		MaxRetries:       rules.MaxRetries,
		OperationTimeout: rules.OperationTimeout,
	}, logger)
	matchService := match.New(store, deckService, ledgerService, rules.OperationTimeout, logger)
	historyService := history.New(store, clk, rules.OperationTimeout, logger)
	authService := auth.New(store, clk, ids, authCfg)

	return &App{
		Storage:        store,
		Locks:          locks,
		Clock:          clk,
		IDs:            ids,
		CatalogService: catalogService,
		DeckService:    deckService,
		LedgerService:  ledgerService,
		MatchService:   matchService,
		HistoryService: historyService,
		AuthService:    authService,
	}
}

// loadCatalog prefers the file and falls back to a previously stored catalog
func (a *App) loadCatalog(ctx context.Context, path string, logger *slog.Logger) error {
	if path != "" {
		err := a.CatalogService.LoadFromFile(ctx, path)
		if err == nil {
			return nil
		}
		logger.Warn("could not load catalog file, trying storage",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
	if err := a.CatalogService.LoadFromStorage(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	return nil
}

// Close releases storage connections
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
