package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/localore/localore-backend/pkg/jwt"
)

// AuthCookieName is the cookie checked before the Authorization header
const AuthCookieName = "auth_token"

const callerKey = "caller"

// Authenticate resolves the request's caller from a signed token and loads
// the account fresh from the store. Role and ban state are never trusted
// from token claims: a token issued before a ban must not outlive it.
func Authenticate(jwtManager *jwt.Manager, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwtManager.Ready() {
			// Deployment fault, not a client error
			common.ConfigError(c, "Token signing secret is not configured.")
			c.Abort()
			return
		}

		tokenString := extractToken(c)
		if tokenString == "" {
			common.Error(c, http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.Error(c, http.StatusUnauthorized, "Token expired.")
			} else {
				common.Error(c, http.StatusUnauthorized, "Invalid token.")
			}
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(claims.UserID, 10, 64)
		if err != nil {
			common.Error(c, http.StatusUnauthorized, "Invalid token.")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			common.Error(c, http.StatusUnauthorized, "Unknown account.")
			c.Abort()
			return
		}

		c.Set(callerKey, user)
		c.Next()
	}
}

// MaybeAuthenticate resolves the caller when a valid token is present and
// stays silent otherwise. Used on public reads that behave differently for
// signed-in users.
func MaybeAuthenticate(jwtManager *jwt.Manager, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" || !jwtManager.Ready() {
			c.Next()
			return
		}
		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		userID, err := strconv.ParseUint(claims.UserID, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		if user, err := userRepo.FindByID(userID); err == nil {
			c.Set(callerKey, user)
		}
		c.Next()
	}
}

// extractToken reads the credential: cookie first, bearer header fallback
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Caller returns the resolved account for the request, or nil
func Caller(c *gin.Context) *domain.User {
	v, exists := c.Get(callerKey)
	if !exists {
		return nil
	}
	if user, ok := v.(*domain.User); ok {
		return user
	}
	return nil
}

// RequireRole gates a route on the caller's current role. Banned callers
// are short-circuited regardless of role.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := Caller(c)
		if caller == nil {
			common.Error(c, http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}
		if caller.IsBanned {
			common.Suspended(c)
			c.Abort()
			return
		}
		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		common.Error(c, http.StatusForbidden, "Insufficient permissions.")
		c.Abort()
	}
}

// RequireStaff gates a route on moderator or admin role
func RequireStaff() gin.HandlerFunc {
	return RequireRole(domain.RoleModerator, domain.RoleAdmin)
}

// RequireActive rejects banned callers on mutating routes
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := Caller(c)
		if caller == nil {
			common.Error(c, http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}
		if caller.IsBanned {
			common.Suspended(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestID returns the request id assigned by the request logger
func RequestID(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
