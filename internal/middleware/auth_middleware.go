package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storybook-backend/internal/app/service"
	"github.com/ikkim/storybook-backend/internal/errors"
	"github.com/ikkim/storybook-backend/pkg/util"
)

// Context keys for the signed-in admin
const (
	AdminIDKey       = "admin_id"
	AdminUsernameKey = "admin_username"
	AdminTokenKey    = "admin_token"
)

const (
	SessionCookieName = "admin_session"
	AdminLoginPath    = "/admin/login/"
)

// SessionAuthenticator validates an admin session token.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*util.AdminClaims, error)
}

type AuthMiddleware struct {
	sessions SessionAuthenticator
}

func NewAuthMiddleware(sessions SessionAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAdmin lets the request through only with a valid admin session.
// Browsers are redirected to the login page; API clients get a JSON 401.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := SessionToken(c)
		if !ok {
			log.Debug("No admin session", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			m.reject(c, errors.AuthUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := m.sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Warn("Admin session rejected", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case stderrors.Is(err, util.ErrExpiredToken):
				m.reject(c, errors.AuthTokenExpired, "Your session has expired. Please log in again.")
			case stderrors.Is(err, service.ErrSessionRevoked):
				m.reject(c, errors.AuthTokenRevoked, "This session has been logged out.")
			default:
				m.reject(c, errors.AuthTokenInvalid, "Invalid session token.")
			}
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Set(AdminUsernameKey, claims.Username)
		c.Set(AdminTokenKey, token)

		log.Debug("Admin authenticated", map[string]interface{}{
			"admin_id": claims.AdminID,
			"username": claims.Username,
		})

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, code, message string) {
	if WantsHTML(c) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
			c.Redirect(http.StatusFound, LoginRedirectURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		// form posts land back on the login page without replaying the body
		c.Redirect(http.StatusSeeOther, LoginRedirectURL(c.Request.URL.Path))
		c.Abort()
		return
	}
	errors.RespondWithError(c, http.StatusUnauthorized, code, message)
	c.Abort()
}

// SessionToken reads the admin token from the Authorization header or the
// session cookie, in that order.
func SessionToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// WantsHTML reports whether the client is a browser expecting a page.
func WantsHTML(c *gin.Context) bool {
	if c.GetHeader("Authorization") != "" {
		return false
	}
	accept := c.GetHeader("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

// LoginRedirectURL is the login page remembering where to go afterwards.
func LoginRedirectURL(next string) string {
	if next == "" || next == AdminLoginPath {
		return AdminLoginPath
	}
	return AdminLoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext keeps post-login redirects on this site under /admin/.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/admin/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/admin/"
	}
	return next
}

// GetAdminID extracts the signed-in admin id from context
func GetAdminID(c *gin.Context) (uint, bool) {
	id, exists := c.Get(AdminIDKey)
	if !exists {
		return 0, false
	}
	adminID, ok := id.(uint)
	return adminID, ok
}

// GetAdminUsername extracts the signed-in admin username from context
func GetAdminUsername(c *gin.Context) (string, bool) {
	name, exists := c.Get(AdminUsernameKey)
	if !exists {
		return "", false
	}
	username, ok := name.(string)
	return username, ok
}
