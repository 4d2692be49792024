package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"staffdir/internal/service"
	"staffdir/internal/token"
)

const bearerPrefix = "Bearer "

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authenticateRequests runs on every request. It never rejects: on any
// extraction or validation failure the request continues unauthenticated and
// route-level guards decide whether that matters. An already-present
// principal is left untouched.
func authenticateRequests(users service.UserService, codec *token.Codec, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c.Request.Context()); ok {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		// a header without the Bearer prefix is treated the same as no header
		raw, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || raw == "" {
			c.Next()
			return
		}

		claims, err := codec.Parse(raw)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				logger.Debugf("access token expired for %s %s", c.Request.Method, c.Request.URL.Path)
			} else {
				logger.Warnf("invalid access token on %s %s", c.Request.Method, c.Request.URL.Path)
			}
			c.Next()
			return
		}

		user, err := users.GetByUsername(c.Request.Context(), claims.Subject)
		if err != nil {
			logger.Warnf("token subject %q has no account", claims.Subject)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(ContextWithPrincipal(c.Request.Context(), user))
		c.Next()
	}
}

// requireAuth guards protected route groups: no principal means 401.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "full authentication is required to access this resource"})
			return
		}
		c.Next()
	}
}
