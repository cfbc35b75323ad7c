package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"procurement/internal/apperror"
	"procurement/internal/policy"
	"procurement/internal/service"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	principalKey = "principal"
	tokenCookie  = "access_token"
)

// PrincipalResolver loads the current state of an authenticated user
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, id uuid.UUID) (policy.Principal, error)
}

// Authenticate validates the bearer token and attaches the caller's principal.
// The user is reloaded on every call so that deactivation takes effect
// immediately, even for tokens that have not expired yet.
func Authenticate(tokens service.TokenService, users PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			response.Abort(c, err)
			return
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}

		principal, err := users.ResolvePrincipal(c.Request.Context(), userID)
		if err != nil {
			response.Abort(c, err)
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// extractToken reads the Authorization header, falling back to the cookie
func extractToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", apperror.Unauthenticated("Invalid authorization format. Expected 'Bearer <token>'")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := c.Cookie(tokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", apperror.Unauthenticated("Authorization is missing")
}

// RequireRole lets the call through only when the principal holds one of roles.
// It must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			response.Abort(c, apperror.Unauthenticated("Authorization is missing"))
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		response.Abort(c, apperror.Forbidden("Access denied: insufficient permissions"))
	}
}

func SetPrincipal(c *gin.Context, principal policy.Principal) {
	c.Set(principalKey, principal)
}

// GetPrincipal returns the principal stored by Authenticate
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return policy.Principal{}, false
	}
	principal, ok := value.(policy.Principal)
	return principal, ok
}

// SetTokenCookie stores the session token as an HttpOnly cookie. Secure
// cookies are sent cross-site (SameSite=None); otherwise Lax is used.
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(tokenCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearTokenCookie(c *gin.Context, secure bool) {
	SetTokenCookie(c, "", -time.Second, secure)
}
