package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"huronportal/internal/apperror"
	"huronportal/internal/auth"
	"huronportal/internal/middleware"
	"huronportal/internal/service"
	"huronportal/pkg/response"
)

// LoginRedirectPath is where logout sends the browser.
const LoginRedirectPath = "/login"

type AuthHandler struct {
	authService  service.AuthService
	sessionTTL   time.Duration
	secureCookie bool
}

// NewAuthHandler sets up the login, logout and session endpoints. Cookies are
// marked Secure when secureCookie is set.
func NewAuthHandler(authService service.AuthService, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// SessionInfo describes the current session.
type SessionInfo struct {
	UserID      string            `json:"userId"`
	Username    string            `json:"username"`
	Role        auth.Role         `json:"role"`
	Permissions []auth.Permission `json:"permissions"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter, requireSession gin.HandlerFunc) {
	group := router.Group("/auth")
	group.POST("/login", h.Login)
	group.POST("/logout", h.Logout)
	group.GET("/session", requireSession, h.Session)
}

// Login authenticates a user and sets the session cookie
// @Summary      Login user
// @Description  Authenticates by username (or email) and password and sets the HttpOnly session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResult}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	middleware.SetSessionCookie(c, res.Token, h.sessionTTL, h.secureCookie)
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, res, "Login successful"))
}

// Logout revokes the current session, clears the cookie and redirects to the login page
// @Summary      Logout
// @Description  Works with or without a valid session
// @Tags         auth
// @Success      303
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		h.authService.Logout(c.Request.Context(), token)
	}
	middleware.ClearSessionCookie(c, h.secureCookie)
	c.Redirect(http.StatusSeeOther, LoginRedirectPath)
}

// Session returns the identity carried by the session cookie
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=SessionInfo}
// @Failure      401  {object}  response.Response
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		response.Fail(c, apperror.NewUnauthenticated("Authentication required"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, SessionInfo{
		UserID:      sess.UserID,
		Username:    sess.Username,
		Role:        sess.Role,
		Permissions: auth.PermissionsFor(sess.Role),
		ExpiresAt:   sess.ExpiresAt,
	}))
}
