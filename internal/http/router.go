package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware(log))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.HTTP.CORSAllowedOrigins))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	requireAuth, requireUser := authGuards(router, cfg.AuthMiddleware)

	maxPerPage := cfg.HTTP.BooksMaxPerPage
	if maxPerPage <= 0 {
		maxPerPage = config.MaxBooksPerPage
	}

	health := NewHealthController(cfg.Version, cfg.HealthChecks)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")

	if cfg.Books != nil {
		books := NewBooksController(cfg.Books, maxPerPage, log)
		api.GET("/books", books.GetBooks)
		api.GET("/books/:id", books.GetBook)
		api.POST("/books", requireAuth, books.CreateBook)
		api.PUT("/books/:id", requireAuth, books.UpdateBook)
		api.DELETE("/books/:id", requireAuth, books.DeleteBook)
		api.GET("/books/:id/ratings", books.GetRatings)
		api.POST("/books/:id/ratings", requireUser, books.AddRating)
	}

	if cfg.Authors != nil {
		authors := NewAuthorsController(cfg.Authors, log)
		api.GET("/authors", authors.GetAuthors)
		api.GET("/authors/:id", authors.GetAuthor)
		api.POST("/authors", requireAuth, authors.CreateAuthor)
		api.PUT("/authors/:id", requireAuth, authors.UpdateAuthor)
		api.DELETE("/authors/delete", requireAuth, authors.DeleteAuthors)
	}

	if cfg.Categories != nil {
		categories := NewCategoriesController(cfg.Categories, log)
		api.GET("/categories", categories.GetCategories)
		api.GET("/categories/:id", categories.GetCategory)
		api.POST("/categories", requireAuth, categories.CreateCategory)
		api.PUT("/categories/delete", requireAuth, categories.DeleteCategories)
		api.PUT("/categories/:id", requireAuth, categories.UpdateCategory)
	}

	if cfg.Currencies != nil {
		currencies := NewCurrenciesController(cfg.Currencies, log)
		api.GET("/currencies", currencies.GetCurrencies)
	}

	if cfg.Accounts != nil {
		var limiter LoginLimiter
		loginHandlers := []gin.HandlerFunc{}
		if cfg.RateLimiter != nil {
			limiter = cfg.RateLimiter
			loginHandlers = append(loginHandlers, cfg.RateLimiter.RateLimitMiddleware())
		}
		users := NewUsersController(cfg.Accounts, limiter, log)
		api.POST("/user/register", users.Register)
		api.POST("/user/login", append(loginHandlers, users.Login)...)
		api.POST("/user/logout", users.Logout)
	}

	tasksController := NewTasksController(cfg.TaskQueue, cfg.LinkPruner, log)
	api.POST("/admin/maintenance/prune-links", requireAuth, tasksController.PruneLinks)
	api.GET("/tasks/:id", tasksController.GetTaskStatus)

	return router
}

// authGuards installs the bearer middleware and returns the per-route
// guards. Without a middleware, requireAuth passes everything and
// requireUser rejects everything.
func authGuards(router *gin.Engine, mw *auth.Middleware) (requireAuth, requireUser gin.HandlerFunc) {
	if mw == nil {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
		anonymous := auth.NewMiddleware(nil, config.Auth{Mode: config.AuthModeNone})
		return anonymous.RequireAuth(), anonymous.RequireUser()
	}
	router.Use(mw.Handler())
	return mw.RequireAuth(), mw.RequireUser()
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", HeaderRequestID)
	cfg.ExposeHeaders = []string{HeaderRequestID, "Retry-After"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
