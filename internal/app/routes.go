package app

import (
	"log/slog"
	"net/http"

	"taskmanager/internal/auth"
	"taskmanager/internal/cache"
	"taskmanager/internal/config"
	"taskmanager/internal/handlers"
	"taskmanager/internal/repo"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// sessionPrefix namespaces session bindings in the cache.
const sessionPrefix = "session:"

// Services holds the core components, constructed once per process.
type Services struct {
	Auth      *service.AuthService
	Tasks     *service.TaskService
	Analytics *service.AnalyticsService
	Reminders *service.ReminderService
}

// NewServices builds the services on top of the given storage and session cache.
func NewServices(tasks repo.TaskRepo, users repo.UserRepo, sessions cache.Cache, cfg config.AuthConfig, log *slog.Logger) Services {
	ttl := cfg.TokenTTL.Duration()
	return Services{
		Auth: service.NewAuthService(
			users,
			auth.NewTokens(cfg.JWTSecret, ttl),
			auth.NewStore(sessions, ttl),
			cfg.BcryptCost,
			log.With("component", "auth"),
		),
		Tasks:     service.NewTaskService(tasks, users, log.With("component", "tasks")),
		Analytics: service.NewAnalyticsService(tasks, log.With("component", "analytics")),
		Reminders: service.NewReminderService(tasks, log.With("component", "reminders")),
	}
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, svc Services) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	dev := cfg.App.Dev()
	api := r.Group("/api/v1")
	registerAuthRoutes(api, handlers.NewAuthHandler(svc.Auth, dev))

	protected := api.Group("", auth.RequireToken(svc.Auth))
	registerTaskRoutes(protected,
		handlers.NewTaskHandler(svc.Tasks, dev),
		handlers.NewAnalyticsHandler(svc.Analytics, dev),
		handlers.NewReminderHandler(svc.Reminders, dev),
	)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Task Manager API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler, a *handlers.AnalyticsHandler, rem *handlers.ReminderHandler) {
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.PUT("/tasks", h.BulkUpdate)
	api.GET("/tasks/stats", h.Stats)
	api.GET("/tasks/archived", h.Archived)
	api.GET("/tasks/overdue", h.Overdue)
	api.GET("/tasks/category/:category", h.ByCategory)
	api.GET("/tasks/analytics", a.Analytics)
	api.GET("/tasks/insights", a.Insights)
	api.GET("/tasks/reminders/check", rem.Check)
	api.POST("/tasks/reminders/trigger", rem.Trigger)
	api.GET("/tasks/:id", h.GetByID)
	api.PUT("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	api.PATCH("/tasks/:id/archive", h.Archive)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
}
