// Package middleware holds the request-level guards shared by the API routes:
// admin key auth and per-client rate limiting.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	adminKey     string
	adminKeyOnce sync.Once
)

// getAdminKey returns the configured admin key, loading it once from environment.
// Returns empty string if ADMIN_KEY is not set (auth disabled).
func getAdminKey() string {
	adminKeyOnce.Do(func() {
		adminKey = os.Getenv("ADMIN_KEY")
	})
	return adminKey
}

// bearerToken pulls the token out of an "Authorization: Bearer <token>"
// header. The code return distinguishes a missing header from a malformed
// one.
func bearerToken(c *gin.Context) (token, code, message string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "AUTH_REQUIRED", "Authorization header required"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "AUTH_INVALID_FORMAT", "Invalid authorization format. Use: Bearer <admin_key>"
	}
	return parts[1], "", ""
}

// checkAdminKey validates the request's bearer token against the configured
// key. An empty code means the request is authorized.
func checkAdminKey(c *gin.Context) (code, message string) {
	key := getAdminKey()
	if key == "" {
		return "", ""
	}

	token, code, message := bearerToken(c)
	if code != "" {
		return code, message
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
		return "AUTH_INVALID_KEY", "Invalid admin key"
	}
	return "", ""
}

// AdminKeyAuth returns middleware that requires a valid admin key. When
// ADMIN_KEY is unset all requests pass, which keeps local development
// friction-free.
func AdminKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if code, message := checkAdminKey(c); code != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": message,
				"code":  code,
			})
			return
		}
		c.Next()
	}
}

// VerifyAdminKey is a handler that reports whether the caller's stored key is
// still valid. Clients poll it before showing admin UI.
func VerifyAdminKey(c *gin.Context) {
	if getAdminKey() == "" {
		c.JSON(http.StatusOK, gin.H{
			"valid":        true,
			"auth_enabled": false,
			"message":      "Authentication is not configured",
		})
		return
	}

	if code, message := checkAdminKey(c); code != "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"valid": false,
			"error": message,
			"code":  code,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"auth_enabled": true,
	})
}

// GetAuthStatus reports whether authentication is enabled. Public endpoint.
func GetAuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"auth_enabled": getAdminKey() != "",
	})
}
