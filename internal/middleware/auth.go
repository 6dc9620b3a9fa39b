package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"huronportal/internal/apperror"
	"huronportal/internal/auth"
	"huronportal/pkg/response"
)

const sessionContextKey = "session"

// Authenticator resolves a session token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// SetSessionCookie stores token in the HttpOnly session cookie. The cookie is
// Secure only when the server runs in release mode.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, int(ttl/time.Second), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", secure, true)
}

// TokenFromRequest reads the session cookie, falling back to an
// "Authorization: Bearer <token>" header for API clients.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(auth.SessionCookieName); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireSession rejects requests without a valid, unrevoked session and
// stores the session in the gin context.
func RequireSession(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			response.Fail(c, apperror.NewUnauthenticated("Authentication required"))
			return
		}

		sess, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}

		c.Set(sessionContextKey, sess)
		c.Set("user_id", sess.UserID)
		c.Next()
	}
}

// SessionFrom returns the session stored by RequireSession, or nil.
func SessionFrom(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*auth.Session)
	return sess
}

func requireRole(allowed func(auth.Role) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			response.Fail(c, apperror.NewUnauthenticated("Authentication required"))
			return
		}
		if !allowed(sess.Role) {
			response.Fail(c, apperror.NewForbidden(message))
			return
		}
		c.Next()
	}
}

// RequirePermission checks that the session role grants every listed permission.
func RequirePermission(required ...auth.Permission) gin.HandlerFunc {
	return requireRole(func(role auth.Role) bool {
		for _, p := range required {
			if !auth.HasPermission(role, p) {
				return false
			}
		}
		return true
	}, "Access denied: insufficient permissions")
}

// RequireWrite admits Admin and Controller sessions.
func RequireWrite() gin.HandlerFunc {
	return requireRole(auth.CanWrite, "Access denied: write access required")
}

func RequireAdmin() gin.HandlerFunc {
	return requireRole(auth.IsAdmin, "Access denied: administrator role required")
}
