package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

const (
	contextCitizenKey  = "currentCitizen"
	contextOfficialKey = "currentOfficial"
)

// RequireCitizen admits only citizens and stores the narrowed actor for handlers.
func RequireCitizen() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		citizen, ok := actor.AsCitizen()
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Access denied. Citizens only."))
			c.Abort()
			return
		}
		c.Set(contextCitizenKey, citizen)
		c.Next()
	}
}

// RequireOfficial admits only government officials.
func RequireOfficial() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		official, ok := actor.AsOfficial()
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Access denied. Government officials only."))
			c.Abort()
			return
		}
		c.Set(contextOfficialKey, official)
		c.Next()
	}
}

// ActorFrom returns the authenticated actor set by JWT.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	value, ok := c.Get(ContextActorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// CitizenFrom returns the actor admitted by RequireCitizen.
func CitizenFrom(c *gin.Context) (models.Citizen, bool) {
	value, ok := c.Get(contextCitizenKey)
	if !ok {
		return models.Citizen{}, false
	}
	citizen, ok := value.(models.Citizen)
	return citizen, ok
}

// OfficialFrom returns the actor admitted by RequireOfficial.
func OfficialFrom(c *gin.Context) (models.Official, bool) {
	value, ok := c.Get(contextOfficialKey)
	if !ok {
		return models.Official{}, false
	}
	official, ok := value.(models.Official)
	return official, ok
}
