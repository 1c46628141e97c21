package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/database/authors"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/categories"
	"github.com/mrlokans/bookcatalog/internal/database/currencies"
	"github.com/mrlokans/bookcatalog/internal/database/maintenance"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	http_controllers "github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/logger"
	"github.com/mrlokans/bookcatalog/internal/metrics"
	"github.com/mrlokans/bookcatalog/internal/scheduler"
	"github.com/mrlokans/bookcatalog/internal/services"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// App holds every long-lived component of the server.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Metrics *metrics.Collector

	DB          *database.Database
	Redis       *redis.Client
	Auth        *auth.Service
	RateLimiter *auth.RateLimiter
	Pruner      *maintenance.Pruner
	Tasks       *tasks.Client
	Scheduler   *scheduler.MaintenanceScheduler

	Books      *services.BookService
	Authors    *services.AuthorService
	Categories *services.CategoryService
	Currencies *currencies.Repository

	authMiddleware *auth.Middleware
	revocation     auth.RevocationStore
	cancelTasks    context.CancelFunc
}

// Build opens the stores and wires the services. Background workers are
// not started; see Start.
func Build(cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	app := &App{Config: cfg, Log: log, Metrics: metrics.NewCollector()}

	db, err := database.NewDatabase(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
		Logger:          log.With("component", "database"),
		Observer:        app.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db

	app.Books = services.NewBookService(books.NewRepository(db))
	app.Authors = services.NewAuthorService(authors.NewRepository(db))
	app.Categories = services.NewCategoryService(categories.NewRepository(db))
	app.Currencies = currencies.NewRepository(db)
	app.Pruner = maintenance.NewPruner(db, app.Metrics)

	if err := app.buildAuth(); err != nil {
		app.Close()
		return nil, err
	}

	if cfg.Tasks.Enabled {
		client, err := tasks.NewClient(
			taskQueuePath(cfg),
			tasks.FromConfig(cfg.Tasks),
			log.With("component", "tasks"),
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		client.Register(tasks.NewPruneDanglingLinksQueue(app.Pruner, log.With("queue", tasks.PruneDanglingLinksQueue)))
		app.Tasks = client
		app.Scheduler = scheduler.NewMaintenanceScheduler(client, cfg.Maintenance, log.With("component", "scheduler"))
	} else if cfg.Maintenance.Enabled {
		log.Warn("maintenance schedule ignored because the task queue is disabled")
	}

	return app, nil
}

// taskQueuePath picks the queue's sqlite file. Without an explicit path it
// sits next to the catalog file, or next to the default catalog file when the
// catalog lives on a server database.
func taskQueuePath(cfg *config.Config) string {
	if cfg.Tasks.DatabasePath != "" {
		return cfg.Tasks.DatabasePath
	}
	path := cfg.Database.Path
	if path == "" {
		path = config.DefaultDatabasePath
	}
	return tasks.DatabasePath(path)
}

func (a *App) buildAuth() error {
	cfg := a.Config

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = generated
		a.Log.Warn("JWT_SECRET is not set, using a random secret; tokens will not survive a restart")
	}
	tokens, err := auth.NewTokenManager(secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	a.revocation = auth.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.Redis = client
		a.revocation = auth.NewRedisStore(client)
		a.Log.Info("token revocation backed by redis", "addr", cfg.Redis.Addr)
	}

	a.Auth = auth.NewService(users.NewRepository(a.DB), tokens, a.revocation, cfg.Auth)
	a.authMiddleware = auth.NewMiddleware(a.Auth, cfg.Auth)
	a.RateLimiter = auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})

	a.Log.Info("authentication configured", "mode", string(cfg.Auth.Mode))
	return nil
}

// RouterConfig collects the HTTP dependencies of the app.
func (a *App) RouterConfig(version string) http_controllers.RouterConfig {
	checks := map[string]http_controllers.Pinger{"database": a.DB}
	if store, ok := a.revocation.(*auth.RedisStore); ok {
		checks["redis"] = store
	}

	routerCfg := http_controllers.RouterConfig{
		Books:          a.Books,
		Authors:        a.Authors,
		Categories:     a.Categories,
		Currencies:     a.Currencies,
		Accounts:       a.Auth,
		AuthMiddleware: a.authMiddleware,
		RateLimiter:    a.RateLimiter,
		LinkPruner:     a.Pruner,
		HealthChecks:   checks,
		Metrics:        a.Metrics,
		Logger:         a.Log.With("component", "http"),
		HTTP:           a.Config.HTTP,
		Version:        version,
	}
	// Assigned only when set so the interface stays nil.
	if a.Tasks != nil {
		routerCfg.TaskQueue = a.Tasks
	}
	return routerCfg
}

// Handler builds the gin engine serving the API.
func (a *App) Handler(version string) *gin.Engine {
	return http_controllers.NewRouter(a.RouterConfig(version))
}

// Start launches the task workers and the maintenance scheduler.
func (a *App) Start(ctx context.Context) error {
	if a.Tasks == nil {
		return nil
	}
	var taskCtx context.Context
	taskCtx, a.cancelTasks = context.WithCancel(ctx)
	a.Tasks.Start(taskCtx)

	if a.Scheduler != nil {
		if err := a.Scheduler.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops background work, waiting up to ctx's deadline for
// running tasks.
func (a *App) Shutdown(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Tasks != nil && a.cancelTasks != nil {
		a.Tasks.Stop(ctx)
		a.cancelTasks()
	}
}

// Close releases the stores. It is safe on a partially built app.
func (a *App) Close() {
	if a.RateLimiter != nil {
		a.RateLimiter.Stop()
	}
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			a.Log.Error("error closing task client", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Error("error closing redis client", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Error("error closing database", "error", err)
		}
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
