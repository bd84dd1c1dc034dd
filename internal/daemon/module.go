package daemon

import (
	"context"
	"time"

	"github.com/carebridgehq/chatsync/internal/bus"
	"github.com/carebridgehq/chatsync/internal/cache"
	"github.com/carebridgehq/chatsync/internal/config"
	"github.com/carebridgehq/chatsync/internal/lock"
	"github.com/carebridgehq/chatsync/internal/logging"
	"github.com/carebridgehq/chatsync/internal/realtime"
	"github.com/carebridgehq/chatsync/internal/rest"
	"github.com/carebridgehq/chatsync/internal/session"
	"github.com/carebridgehq/chatsync/internal/status"
	intsync "github.com/carebridgehq/chatsync/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
	// ConfigPath overrides the global config location; empty = default.
	ConfigPath string
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideCache,
			provideRESTClient,
			provideEngine,
			provideRealtimeClient,
			provideCacheWriter,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = session.ConfigPath()
	}
	return config.Load(path)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(session.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideCache(p Params, logger *zap.Logger) (*cache.DB, error) {
	dbPath := session.CacheDBPath(p.Profile)
	db, err := cache.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("cache initialized", zap.String("path", dbPath))
	return db, nil
}

func provideRESTClient(cfg *config.Config, logger *zap.Logger) *rest.Client {
	return rest.NewClient(cfg.API.BaseURL, cfg.API.Token, logger)
}

func provideEngine(client *rest.Client, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(client, b, cfg.API.UserID, logger)
}

func provideRealtimeClient(cfg *config.Config, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *realtime.Client {
	c := realtime.NewClient(cfg.Realtime.URL, cfg.API.Token, b, machine, logger)
	c.SetRetryInterval(time.Duration(cfg.Realtime.RetryIntervalSeconds) * time.Second)
	return c
}

func provideCacheWriter(db *cache.DB, b *bus.Bus, logger *zap.Logger) *cache.Writer {
	return cache.NewWriter(db, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, db *cache.DB, engine *intsync.Engine, writer *cache.Writer, rt *realtime.Client, machine *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Seed the stores from the local cache before anything touches
			// the network.
			cache.WarmStart(db, engine, logger)

			// Persistence and event application run for the daemon's whole
			// life, detached from the startup context.
			writer.Start(context.Background())
			engine.Start(context.Background())

			_ = machine.Transition(status.Connecting)
			rt.Start(context.Background())

			// The initial directory fetch happens off the startup path so a
			// slow backend does not block boot.
			go func() {
				if err := engine.LoadConversations(context.Background()); err != nil {
					logger.Error("initial conversation load failed", zap.Error(err))
					return
				}
				_ = machine.Transition(status.Ready)
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			rt.Stop()
			engine.Stop()
			writer.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing cache", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
