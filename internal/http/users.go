package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

// UsersController handles account registration and token sessions.
type UsersController struct {
	accounts AccountService
	limiter  LoginLimiter
	log      *logger.Logger
}

// NewUsersController creates a controller. limiter may be nil.
func NewUsersController(accounts AccountService, limiter LoginLimiter, log *logger.Logger) *UsersController {
	if log == nil {
		log = logger.NewNop()
	}
	return &UsersController{accounts: accounts, limiter: limiter, log: log}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /user/register
func (uc *UsersController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "No email or password"})
		return
	}
	user, err := uc.accounts.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondAppError(c, uc.log, err, "users.register")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /user/login
func (uc *UsersController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "No email or password"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	session, err := uc.accounts.Login(c.Request.Context(), email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		if uc.limiter != nil {
			if locked, retryAfter := uc.limiter.RecordFailure(c.ClientIP(), email); locked {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts"})
				return
			}
		}
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, auth.ErrNoSecret):
		uc.log.Error("login attempted without a signing secret")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "login is not configured"})
		return
	case err != nil:
		respondAppError(c, uc.log, err, "users.login")
		return
	}

	if uc.limiter != nil {
		uc.limiter.RecordSuccess(c.ClientIP(), email)
	}
	uc.log.Info("user logged in", "user_id", session.User.ID)
	c.JSON(http.StatusOK, session)
}

// Logout handles POST /user/logout. The bearer token is revoked until it
// would have expired.
func (uc *UsersController) Logout(c *gin.Context) {
	token := auth.BearerToken(c)
	if token == "" {
		c.Header("WWW-Authenticate", `Bearer realm="bookcatalog"`)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrAuthRequired.Error()})
		return
	}

	err := uc.accounts.Logout(c.Request.Context(), token)
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		respondAppError(c, uc.log, err, "users.logout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}
