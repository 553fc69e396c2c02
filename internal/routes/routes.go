package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/handler"
	"github.com/noah-isme/civic-complaint-api/internal/middleware"
	"github.com/noah-isme/civic-complaint-api/internal/service"
	"github.com/noah-isme/civic-complaint-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/civic-complaint-api/pkg/middleware/cors"
	"github.com/noah-isme/civic-complaint-api/pkg/middleware/recovery"
	reqidmiddleware "github.com/noah-isme/civic-complaint-api/pkg/middleware/requestid"
	"github.com/noah-isme/civic-complaint-api/pkg/middleware/secureheaders"
)

// Options controls which optional surfaces are mounted.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	// UploadsPath and UploadsDir serve locally stored images when both are set.
	UploadsPath string
	UploadsDir  string
}

// Handlers groups everything the route table dispatches to.
type Handlers struct {
	Auth       *handler.AuthHandler
	Complaints *handler.ComplaintHandler
	Dashboard  *handler.DashboardHandler
	Users      *handler.UserHandler
	Analytics  *handler.AnalyticsHandler
	Metrics    *handler.MetricsHandler
}

// New builds the gin engine with the global middleware chain and every API route.
func New(opts Options, h Handlers, auth middleware.TokenAuthenticator, metrics *service.MetricsService, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(recovery.Middleware(log))
	r.Use(secureheaders.New())
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if opts.UploadsPath != "" && opts.UploadsDir != "" {
		r.Static(opts.UploadsPath, opts.UploadsDir)
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	api := r.Group(prefix)

	authGroup := api.Group("/auth")
	authGroup.POST("/register/citizen", h.Auth.RegisterCitizen)
	authGroup.POST("/register/government", h.Auth.RegisterGovernment)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.GET("/verify", h.Auth.Verify)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	citizenOnly := middleware.RequireCitizen()
	officialOnly := middleware.RequireOfficial()

	complaints := secured.Group("/complaints")
	complaints.POST("", citizenOnly, h.Complaints.Submit)
	complaints.GET("", officialOnly, h.Complaints.List)
	complaints.GET("/:id", h.Complaints.Get)
	complaints.DELETE("/:id", citizenOnly, h.Complaints.Delete)
	complaints.PATCH("/:id/status", officialOnly, h.Complaints.UpdateStatus)
	complaints.PATCH("/:id/assign", officialOnly, h.Complaints.Assign)
	complaints.GET("/:id/history", h.Complaints.History)

	citizen := secured.Group("/citizen", citizenOnly)
	citizen.GET("/dashboard", h.Dashboard.Citizen)
	citizen.GET("/complaints", h.Complaints.ListMine)
	citizen.PUT("/profile", h.Users.UpdateProfile)

	government := secured.Group("/government", officialOnly)
	government.GET("/dashboard", h.Dashboard.Government)
	government.GET("/assigned-complaints", h.Complaints.ListAssigned)
	government.PUT("/profile", h.Users.UpdateProfile)

	analytics := secured.Group("/analytics", officialOnly)
	analytics.GET("/trends", h.Analytics.Trends)
	analytics.GET("/categories", h.Analytics.Categories)
	analytics.GET("/status", h.Analytics.Status)
	analytics.GET("/areas", h.Analytics.Areas)
	analytics.GET("/export", h.Analytics.Export)
	analytics.GET("/system", h.Analytics.System)

	return r
}
