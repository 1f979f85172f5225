package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/pkg/auth"
	"github.com/liveqai/eventhub/pkg/response"
)

const (
	// AuthHostKey is the key used to store the authenticated host in the context
	AuthHostKey = "auth_host"
	// AuthorizationHeaderKey is the key for authorization header
	AuthorizationHeaderKey = "Authorization"
	// BearerToken is the prefix for token-based authentication
	BearerToken = "Bearer"
)

// JWTAuthMiddleware creates a middleware for JWT authentication on
// host-only routes (the join-lock toggle and event resume).
func JWTAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			response.WithError(c, http.StatusUnauthorized, "Unauthorized", "Authorization header is required")
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || fields[0] != BearerToken {
			response.WithError(c, http.StatusUnauthorized, "Unauthorized", "Invalid authorization format. Format should be 'Bearer {token}'")
			c.Abort()
			return
		}

		tokenString := fields[1]

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			statusCode := http.StatusUnauthorized
			message := "Invalid token"
			if err == auth.ErrExpiredToken {
				message = "Token has expired"
			}
			response.WithError(c, statusCode, "Unauthorized", message)
			c.Abort()
			return
		}

		host := &model.Host{
			ID:    claims.HostID,
			Email: claims.Email,
		}

		c.Set(AuthHostKey, host)
		c.Next()
	}
}

// GetAuthHost retrieves the authenticated host from the context.
func GetAuthHost(c *gin.Context) *model.Host {
	host, exists := c.Get(AuthHostKey)
	if !exists {
		return nil
	}
	return host.(*model.Host)
}

// GetAuthHostID retrieves the authenticated host's id from the context.
func GetAuthHostID(c *gin.Context) uuid.UUID {
	host := GetAuthHost(c)
	if host == nil {
		return uuid.Nil
	}
	return host.ID
}
