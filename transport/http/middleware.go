package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// IdentityHeader carries the caller's identity id on privileged requests
	IdentityHeader = "X-Identity-ID"

	ctxIdentityID = "identityID"
	ctxToken      = "sessionToken"
)

// CredentialsMiddleware extracts the identity id and bearer token of privileged requests.
// The token itself is validated, and consumed, by the service call the handler makes.
func CredentialsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		id, err := strconv.ParseUint(c.GetHeader(IdentityHeader), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid " + IdentityHeader + " header"})
			return
		}

		c.Set(ctxIdentityID, id)
		c.Set(ctxToken, token)

		c.Next()
	}
}

func credentials(c *gin.Context) (uint64, string) {
	return c.GetUint64(ctxIdentityID), c.GetString(ctxToken)
}

// LoggingMiddleware writes one structured log line per request, leveled by status
func LoggingMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.Float64("duration_ms", float64(time.Since(start).Nanoseconds())/float64(time.Millisecond)),
		}
		if id, ok := c.Get(ctxIdentityID); ok {
			attrs = append(attrs, slog.Any("identity_id", id))
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		log.Log(c.Request.Context(), level, "http_request", attrs...)
	}
}
