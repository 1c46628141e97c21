package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/config"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyEmail    = "auth_email"
	ContextKeyToken    = "auth_token"
	ContextKeyAuthType = "auth_type" // "bearer" or "none"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// DefaultUserID is used when the request carries no valid token.
const DefaultUserID = uint(0)

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service *Service
	config  config.Auth
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, cfg config.Auth) *Middleware {
	return &Middleware{service: service, config: cfg}
}

// Handler identifies the caller from an "Authorization: Bearer" header.
// It never rejects a request on its own; a missing or bad token leaves the
// request anonymous and RequireAuth decides.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, DefaultUserID)
		c.Set(ContextKeyAuthType, AuthTypeNone)

		token := BearerToken(c)
		if token == "" || m.service == nil {
			c.Next()
			return
		}

		claims, err := m.service.Verify(c.Request.Context(), token)
		if err == nil {
			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyEmail, claims.Email)
			c.Set(ContextKeyToken, token)
			c.Set(ContextKeyAuthType, AuthTypeBearer)
		} else {
			_ = c.Error(err)
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests when AUTH_MODE is jwt.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.Mode != config.AuthModeJWT {
			c.Next()
			return
		}
		m.requireUser(c)
	}
}

// RequireUser rejects anonymous requests regardless of AUTH_MODE. Routes
// that act on behalf of a user, such as ratings, use it.
func (m *Middleware) RequireUser() gin.HandlerFunc {
	return m.requireUser
}

func (m *Middleware) requireUser(c *gin.Context) {
	if GetUserID(c) != DefaultUserID {
		c.Next()
		return
	}
	msg := ErrAuthRequired.Error()
	for _, e := range c.Errors {
		if errors.Is(e.Err, ErrTokenExpired) || errors.Is(e.Err, ErrTokenRevoked) {
			msg = e.Err.Error()
		}
	}
	c.Header("WWW-Authenticate", `Bearer realm="bookcatalog"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns DefaultUserID (0) if not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetEmail retrieves the authenticated user's email from the context.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

// GetToken returns the verified bearer token of the request, if any.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
