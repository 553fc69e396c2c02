package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/logger"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

// Context keys populated by the auth middleware.
const (
	ContextUserKey  = "currentUser"
	ContextActorKey = "currentActor"
)

// TokenAuthenticator resolves a bearer token to an active user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// JWT protects routes by requiring a valid bearer token for a still-active account.
// The resolved user and actor are stored on the context.
func JWT(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		actor := models.ActorFromUser(user)
		actor.IP = c.ClientIP()
		actor.UserAgent = c.GetHeader("User-Agent")

		c.Set(ContextUserKey, user)
		c.Set(ContextActorKey, actor)
		c.Set(logger.UserIDKey, user.ID)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "Invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
