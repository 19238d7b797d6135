// Package server wires the content API together: storage backends, the
// rate limiter, the services and the HTTP and gRPC health listeners, and
// runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/cms/internal/clock"
	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/access"
	"github.com/dmitrijs2005/cms/internal/server/auth"
	"github.com/dmitrijs2005/cms/internal/server/config"
	"github.com/dmitrijs2005/cms/internal/server/httpapi"
	"github.com/dmitrijs2005/cms/internal/server/metrics"
	"github.com/dmitrijs2005/cms/internal/server/notify"
	"github.com/dmitrijs2005/cms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cms/internal/server/services"
	"github.com/dmitrijs2005/cms/internal/server/throttle"
	"github.com/dmitrijs2005/cms/internal/server/verification"

	gs "github.com/dmitrijs2005/cms/internal/server/grpc"
)

const (
	counterSweepInterval = time.Minute
	notifyTimeout        = 30 * time.Second
	redisKeyPrefix       = "cms:throttle:"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	redis      *redis.Client
	counters   *throttle.MemoryStore
	dispatcher *notify.Dispatcher
	handler    *httpapi.API
	probes     []gs.Probe
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	rates, err := throttle.ParseRates(c.ThrottleRates)
	if err != nil {
		return nil, fmt.Errorf("throttle rates: %w", err)
	}

	rm, err := app.initStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	store := app.initCounters()

	realClock := clock.Real{}
	limiter := throttle.NewLimiter(store, realClock,
		throttle.WithRates(rates),
		throttle.WithObserver(metrics.ObserveThrottle),
	)
	gate := access.NewGate(limiter, realClock, logger)

	verifier := auth.NewVerifier(rm.Users(app.db), []byte(c.SecretKey), c.AccessTokenValidityDuration)
	tokens := verification.NewManager(rm.Verifications(app.db), realClock, c.VerificationTokenValidity)
	app.dispatcher = notify.NewDispatcher(notify.NewLogSink(logger), logger, notifyTimeout)

	app.handler = httpapi.NewAPI(
		services.NewArticleService(app.db, rm, gate, realClock),
		services.NewCommentService(app.db, rm, gate, realClock),
		services.NewUserService(app.db, rm, gate, verifier, tokens, app.dispatcher, c.BaseURL, logger),
		verifier,
		logger,
	)

	return app, nil
}

// initStorage selects Postgres when a DSN is configured and in-memory
// repositories otherwise.
func (app *App) initStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, data is kept in memory")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.probes = append(app.probes, gs.Probe{Name: "postgres", Check: db.PingContext})

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return rm, nil
}

// initCounters selects Redis when an address is configured so that every
// process shares one budget per key.
func (app *App) initCounters() throttle.Store {
	if app.config.RedisAddr == "" {
		app.counters = throttle.NewMemoryStore()
		return app.counters
	}

	app.redis = redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	app.probes = append(app.probes, gs.Probe{Name: "redis", Check: func(ctx context.Context) error {
		return app.redis.Ping(ctx).Err()
	}})
	return throttle.NewRedisStore(app.redis, redisKeyPrefix)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.handler.Routes(), app.config.ShutdownTimeout, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, 0, app.probes...)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// sweepCounters drops expired in-memory throttle windows.
func (app *App) sweepCounters(ctx context.Context) {
	t := time.NewTicker(counterSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := app.counters.Sweep(now.UTC()); n > 0 {
				app.logger.Debug(ctx, "expired throttle counters removed", "count", n)
			}
		}
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for the listeners and pending notifications to finish.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.counters != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sweepCounters(ctx)
		}()
	}

	wg.Wait()

	app.dispatcher.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database pool and the Redis client.
func (app *App) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "closing database", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "closing redis", "error", err)
		}
	}
}
