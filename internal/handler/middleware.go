package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/auth-service/internal/domain"
	"github.com/vidtube/auth-service/internal/dto"
	"github.com/vidtube/auth-service/internal/service"
)

// Context keys set by AuthMiddleware
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// AuthMiddleware is the request authentication gate. It extracts a bearer
// credential from the accessToken cookie or the Authorization header (cookie
// wins), verifies it, re-fetches the persisted identity and attaches it to
// the request context. Any failure rejects the request before it reaches a
// resource handler.
func AuthMiddleware(authService service.AuthService, cookies *CookieHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.GetAccessToken(c)
		if token == "" {
			token = bearerToken(c)
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authentication credential is required",
			})
			c.Abort()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)

		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) string {
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

// currentUser returns the identity attached by AuthMiddleware
func currentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}

	user, ok := v.(*domain.User)
	return user, ok
}
