package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/auth-service/internal/config"
)

const (
	// Cookie names, shared with the platform's web client
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieHelper manages the session cookies. Both cookies are always httpOnly;
// Secure and Domain come from configuration so local development works.
type CookieHelper struct {
	config config.CookieConfig
}

// NewCookieHelper creates a new cookie helper with the given configuration.
func NewCookieHelper(cfg config.CookieConfig) *CookieHelper {
	return &CookieHelper{config: cfg}
}

// SetAuthCookies sets both access and refresh token cookies.
func (h *CookieHelper) SetAuthCookies(c *gin.Context, accessToken, refreshToken string, accessMaxAge, refreshMaxAge int) {
	h.setCookie(c, AccessTokenCookie, accessToken, accessMaxAge)
	h.setCookie(c, RefreshTokenCookie, refreshToken, refreshMaxAge)
}

// ClearAuthCookies removes both session cookies.
func (h *CookieHelper) ClearAuthCookies(c *gin.Context) {
	h.setCookie(c, AccessTokenCookie, "", -1)
	h.setCookie(c, RefreshTokenCookie, "", -1)
}

// GetAccessToken retrieves the access token from cookie.
func (h *CookieHelper) GetAccessToken(c *gin.Context) string {
	token, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// GetRefreshToken retrieves the refresh token from cookie.
func (h *CookieHelper) GetRefreshToken(c *gin.Context) string {
	token, err := c.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func (h *CookieHelper) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		name,
		value,
		maxAge,
		"/",
		h.config.Domain,
		h.config.Secure,
		true, // httpOnly, always, for session cookies
	)
}
