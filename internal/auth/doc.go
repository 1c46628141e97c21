// Package auth provides authentication for the catalog API.
//
// It supports two authentication modes:
//   - "none": catalog mutations are open (default); ratings still need a token
//   - "jwt": every mutating catalog route requires a Bearer token
//
// # Configuration
//
//	AUTH_MODE=none|jwt
//	JWT_SECRET=<secret>        # JWTSECRET is accepted as well
//	JWT_TTL=24h                # token lifetime
//	AUTH_BCRYPT_COST=12        # bcrypt cost factor
//	REDIS_ADDR=localhost:6379  # logout revocation; in-memory when empty
//
// # Usage
//
//	tokens, _ := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
//	authService := auth.NewService(userRepo, tokens, auth.NewMemoryStore(), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // DefaultUserID when anonymous
package auth
