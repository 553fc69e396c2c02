package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-complaint-api/internal/middleware"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/internal/service"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return actor, ok
}

func currentCitizen(c *gin.Context) (models.Citizen, bool) {
	citizen, ok := middleware.CitizenFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Access denied. Citizens only."))
	}
	return citizen, ok
}

func currentOfficial(c *gin.Context) (models.Official, bool) {
	official, ok := middleware.OfficialFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Access denied. Government officials only."))
	}
	return official, ok
}

// bindJSON decodes the request body and writes a 400 on malformed input.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Request body too large"))
			return false
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid request payload"))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.WithField(key, key+" must be an integer")
	}
	return value, nil
}

// complaintFilterFromQuery reads page, limit, status, category, priority, startDate and endDate.
func complaintFilterFromQuery(c *gin.Context) (models.ComplaintFilter, error) {
	var filter models.ComplaintFilter
	var err error
	if filter.Page, err = queryInt(c, "page", 1); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(c, "limit", 10); err != nil {
		return filter, err
	}
	if filter.Status, err = service.ParseStatusFilter(c.Query("status")); err != nil {
		return filter, err
	}
	if filter.Category, err = service.ParseCategoryFilter(c.Query("category")); err != nil {
		return filter, err
	}
	if filter.Priority, err = service.ParsePriorityFilter(c.Query("priority")); err != nil {
		return filter, err
	}
	if filter.StartDate, err = service.ParseDateFilter("startDate", c.Query("startDate"), false); err != nil {
		return filter, err
	}
	if filter.EndDate, err = service.ParseDateFilter("endDate", c.Query("endDate"), true); err != nil {
		return filter, err
	}
	return filter, nil
}
