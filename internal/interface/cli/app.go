package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/staffbook/staffbook/config"
	"github.com/staffbook/staffbook/internal/application/command"
	"github.com/staffbook/staffbook/internal/application/query"
	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/infrastructure/messaging"
	"github.com/staffbook/staffbook/internal/infrastructure/persistence/memory"
	"github.com/staffbook/staffbook/internal/infrastructure/persistence/postgres"
	"github.com/staffbook/staffbook/internal/infrastructure/persistence/redis"
	"github.com/staffbook/staffbook/pkg/circuitbreaker"
	"github.com/staffbook/staffbook/pkg/logger"
	"github.com/staffbook/staffbook/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// App wires repositories, the event bus and the application handlers.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	Repo   employee.Repository
	Bus    *messaging.Bus

	// Commands
	Hire       *command.HireHandler
	Raise      *command.ApplyRaiseHandler
	SharedRate *command.SetSharedRateHandler
	Rename     *command.RenameHandler
	Roster     *command.RosterHandler

	// Queries
	StaffCard  *query.StaffCardHandler
	RosterView *query.RosterHandler
	Headcount  *query.HeadcountHandler

	closers []func()
}

// NewApp builds the application. PostgreSQL is used when a database URL is
// configured, the in-memory repository otherwise. An unreachable Redis only
// disables the card cache.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	app := &App{Config: cfg, Log: log}

	// ─────────────────────────────────────────────────────────────────────────
	// 1. REPOSITORY
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL != "" {
		conn, err := connectDatabase(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, conn.Close)

		ran, err := postgres.NewMigrator(conn).Migrate(ctx)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed", logger.Int("applied", ran))

		app.Repo = postgres.NewStaffRepository(conn)
	} else {
		log.Debug("no database configured, using in-memory repository")
		app.Repo = memory.NewStaffRepository()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. CARD CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		cards       query.CardCache
		invalidator command.Invalidator
	)
	if cfg.Redis.Enabled {
		cache, err := connectCache(ctx, cfg, log)
		if err != nil {
			log.Warn("redis unavailable, card cache disabled", logger.Err(err))
		} else {
			app.closers = append(app.closers, func() { _ = cache.Close() })
			breaker := circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			})
			cardCache := redis.NewCardCache(cache, cfg.Redis.TTL).WithBreaker(breaker).WithLogger(log)
			cards, invalidator = cardCache, cardCache
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	app.Bus = messaging.NewBus(busCfg)
	app.Bus.Use(messaging.RecoveryMiddleware(log))
	app.Bus.Use(messaging.LoggingMiddleware(log))
	if err := app.Bus.SubscribeAll(messaging.NewLogHandler(log)); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to subscribe event log: %w", err)
	}
	app.closers = append(app.closers, func() { _ = app.Bus.Close() })

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	deps := command.Deps{
		Repo:        app.Repo,
		Publisher:   app.Bus,
		Invalidator: invalidator,
		Logger:      log,
	}
	app.Hire = command.NewHireHandler(deps)
	app.Raise = command.NewApplyRaiseHandler(deps)
	app.SharedRate = command.NewSetSharedRateHandler(deps)
	app.Rename = command.NewRenameHandler(deps)
	app.Roster = command.NewRosterHandler(deps)

	app.StaffCard = query.NewStaffCardHandler(app.Repo, cards, log)
	app.RosterView = query.NewRosterHandler(app.Repo)
	app.Headcount = query.NewHeadcountHandler(app.Repo)

	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*postgres.Connection, error) {
	log.Info("connecting to database...")
	conn, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")
	return conn, nil
}

func connectCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (*redis.Cache, error) {
	redisCfg := redis.DefaultConfig()
	redisCfg.Addr = cfg.Redis.Addr
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB

	policy := retry.Cache().Notify(func(attempt int, err error, delay time.Duration) {
		log.Warn("redis not reachable, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	})
	return retry.Value(ctx, policy, func(context.Context) (*redis.Cache, error) {
		return redis.NewCache(redisCfg)
	})
}
