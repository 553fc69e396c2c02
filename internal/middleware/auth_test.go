package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/internal/service"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/response"
)

type fakeAuthenticator struct {
	users map[string]*models.User
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token == "expired" {
		return nil, appErrors.ErrTokenExpired
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, appErrors.ErrInvalidToken
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := fakeAuthenticator{users: map[string]*models.User{
		"citizen-token":  {ID: "u-1", Name: "Asha", Role: models.RoleCitizen, Active: true},
		"official-token": {ID: "u-2", Name: "Rao", Role: models.RoleGovernment, Active: true},
	}}
	r := gin.New()
	api := r.Group("/", JWT(auth))
	api.GET("/me", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	api.GET("/citizen", RequireCitizen(), func(c *gin.Context) {
		citizen, _ := CitizenFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": citizen.ID})
	})
	api.GET("/official", RequireOfficial(), func(c *gin.Context) {
		official, _ := OfficialFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": official.ID})
	})
	return r
}

func doAuthRequest(r *gin.Engine, path, header string) (*httptest.ResponseRecorder, response.ErrorBody) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var body response.ErrorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := newAuthRouter()

	rec, body := doAuthRequest(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body.Code)

	rec, _ = doAuthRequest(r, "/me", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = doAuthRequest(r, "/me", "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", body.Code)

	rec, body = doAuthRequest(r, "/me", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestJWTStoresActor(t *testing.T) {
	rec, _ := doAuthRequest(newAuthRouter(), "/me", "bearer citizen-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u-1","role":"citizen"}`, rec.Body.String())
}

func TestRoleGates(t *testing.T) {
	r := newAuthRouter()

	rec, _ := doAuthRequest(r, "/citizen", "Bearer citizen-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := doAuthRequest(r, "/citizen", "Bearer official-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", body.Code)

	rec, _ = doAuthRequest(r, "/official", "Bearer official-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doAuthRequest(r, "/official", "Bearer citizen-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin", nil))

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}

func TestSetCacheHitHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SetCacheHit(c, true)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.True(t, CacheHit(c))
}
