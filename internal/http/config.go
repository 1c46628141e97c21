package http

import (
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/logger"
	"github.com/mrlokans/bookcatalog/internal/metrics"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Catalog services
	Books      BookService
	Authors    AuthorService
	Categories CategoryService
	Currencies CurrencyLister

	// Authentication. AuthMiddleware may be nil, in which case every
	// request is anonymous and user-only routes always answer 401.
	Accounts       AccountService
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter

	// Maintenance. TaskQueue is optional; without it prune-links runs inline.
	TaskQueue  TaskQueue
	LinkPruner LinkPruner

	// Health probes by name, e.g. "database" and "redis".
	HealthChecks map[string]Pinger

	Metrics *metrics.Collector
	Logger  *logger.Logger

	HTTP    config.HTTP
	Version string
}
