package routes

import (
	"github.com/gin-gonic/gin"
	"scribed/internal/api/middleware"
	"scribed/internal/api/v1/handlers"
	"scribed/internal/api/v1/services"
)

// ServiceContainer holds the services wired into the v1 routes.
type ServiceContainer struct {
	JobService       services.JobService
	OperationService services.OperationService
	UsageService     services.UsageService
}

// RegisterRoutes registers all v1 API routes.
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	router.Use(middleware.RequestID())

	jobHandler := handlers.NewJobHandler(container.JobService)
	jobs := router.Group("/jobs")
	{
		jobs.POST("", jobHandler.Create)
		jobs.GET("", jobHandler.List)
		jobs.GET("/:id", jobHandler.Get)
		jobs.POST("/:id/cancel", jobHandler.Cancel)
		jobs.DELETE("/:id", jobHandler.Delete)
		jobs.POST("/:id/restore", jobHandler.Restore)

		// Worker callbacks.
		jobs.POST("/:id/progress", jobHandler.AppendProgress)
		jobs.POST("/:id/status", jobHandler.Transition)
		jobs.POST("/:id/complete", jobHandler.Complete)
		jobs.POST("/:id/fail", jobHandler.Fail)
		jobs.POST("/:id/title", jobHandler.SetTitleStatus)
	}

	operationHandler := handlers.NewOperationHandler(container.OperationService)
	operations := router.Group("/operations")
	{
		operations.POST("", operationHandler.Create)
		operations.GET("/:id", operationHandler.Get)
		operations.POST("/:id/transition", operationHandler.Transition)
		operations.PUT("/:id/result", operationHandler.UpdateResult)
	}

	usageHandler := handlers.NewUsageHandler(container.UsageService)
	usage := router.Group("/usage")
	{
		usage.GET("", usageHandler.Get)
		usage.GET("/summary", usageHandler.Summary)
		usage.GET("/quota", usageHandler.CheckQuota)
	}
}
