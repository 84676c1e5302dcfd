package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"assettrack/internal/logging"
	"assettrack/internal/server/auth"
)

// Context keys populated by AuthMiddleware.
const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token's claims in the request context for the handlers.
func AuthMiddleware(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorResponse(c, http.StatusUnauthorized, "authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			errorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(parts[1], secretKey)
		if err != nil {
			errorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)

		c.Next()
	}
}

// RequestLogger logs one line per request with method, path, status, and
// latency. Server errors log at error level, client errors at warn.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.Error(ctx, "request failed", args...)
		case status >= 400:
			log.Warn(ctx, "request rejected", args...)
		default:
			log.Info(ctx, "request served", args...)
		}
	}
}
