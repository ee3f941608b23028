package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daysegment/backend/internal/handler"
	"daysegment/backend/internal/middleware"
	"daysegment/backend/internal/service"
)

// Handlers bundles every route handler the API mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Task       *handler.TaskHandler
	Subtask    *handler.SubtaskHandler
	Segment    *handler.SegmentHandler
	Category   *handler.CategoryHandler
	Collection *handler.CollectionHandler
	Template   *handler.TemplateHandler
	Settings   *handler.SettingsHandler
	Analytics  *handler.AnalyticsHandler
	Push       *handler.PushHandler
}

// New builds the gin engine. When gateway is non-nil, requests outside
// /api and /health fall through to the offline asset gateway.
func New(
	authService *service.AuthService,
	handlers Handlers,
	corsOrigins []string,
	gateway http.Handler,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(authService))

	tasks := authed.Group("/tasks")
	tasks.POST("", handlers.Task.Create)
	tasks.GET("", handlers.Task.List)
	tasks.GET("/:id", handlers.Task.Get)
	tasks.PUT("/:id", handlers.Task.Update)
	tasks.DELETE("/:id", handlers.Task.Delete)
	tasks.POST("/:id/start", handlers.Task.Start)
	tasks.POST("/:id/complete", handlers.Task.Complete)
	tasks.POST("/:id/tally", handlers.Task.AddTallyMark)

	tasks.GET("/:id/subtasks", handlers.Subtask.List)
	tasks.POST("/:id/subtasks", handlers.Subtask.Add)
	tasks.PUT("/:id/subtasks/order", handlers.Subtask.Reorder)
	tasks.POST("/:id/subtasks/:subtaskId/toggle", handlers.Subtask.Toggle)
	tasks.DELETE("/:id/subtasks/:subtaskId", handlers.Subtask.Delete)

	segments := authed.Group("/segments")
	segments.POST("", handlers.Segment.Create)
	segments.GET("", handlers.Segment.List)
	segments.PUT("/:id", handlers.Segment.Update)
	segments.DELETE("/:id", handlers.Segment.Delete)

	categories := authed.Group("/categories")
	categories.POST("", handlers.Category.Create)
	categories.GET("", handlers.Category.List)
	categories.PUT("/:id", handlers.Category.Update)
	categories.DELETE("/:id", handlers.Category.Delete)

	collections := authed.Group("/collections")
	collections.POST("", handlers.Collection.Create)
	collections.GET("", handlers.Collection.List)
	collections.PUT("/:id", handlers.Collection.Update)
	collections.DELETE("/:id", handlers.Collection.Delete)
	collections.GET("/:id/tasks", handlers.Collection.ListTasks)
	collections.POST("/:id/tasks", handlers.Collection.AddTask)
	collections.DELETE("/:id/tasks/:taskId", handlers.Collection.RemoveTask)

	templates := authed.Group("/templates")
	templates.POST("", handlers.Template.Create)
	templates.GET("", handlers.Template.List)
	templates.GET("/:id", handlers.Template.Get)
	templates.DELETE("/:id", handlers.Template.Delete)
	templates.POST("/:id/instantiate", handlers.Template.Instantiate)

	settings := authed.Group("/settings")
	settings.GET("", handlers.Settings.List)
	settings.GET("/search", handlers.Settings.Search)
	settings.GET("/notifications", handlers.Settings.GetNotifications)
	settings.PUT("/notifications", handlers.Settings.UpdateNotifications)
	settings.GET("/:key", handlers.Settings.Get)
	settings.PUT("/:key", handlers.Settings.Set)
	settings.DELETE("/:key", handlers.Settings.Delete)

	analyticsGroup := authed.Group("/analytics")
	analyticsGroup.GET("/productivity", handlers.Analytics.Productivity)
	analyticsGroup.GET("/completion-by-type", handlers.Analytics.CompletionByType)
	analyticsGroup.GET("/heatmap", handlers.Analytics.Heatmap)
	analyticsGroup.GET("/streaks", handlers.Analytics.Streaks)

	push := authed.Group("/push")
	push.POST("", handlers.Push.Receive)
	push.POST("/click", handlers.Push.ResolveClick)

	if gateway != nil {
		engine.NoRoute(gin.WrapH(gateway))
	}

	return engine
}
