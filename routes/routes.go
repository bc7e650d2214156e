package routes

import (
	"github.com/campus-lostfound/api-go/controllers"
	"github.com/campus-lostfound/api-go/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers bundles the handlers the router mounts.
type Controllers struct {
	Auth    *controllers.AuthController
	Reports *controllers.ReportController
	Admin   *controllers.AdminController
	System  *controllers.SystemController
}

func SetupRoutes(r *gin.Engine, ctrl Controllers, auth middleware.Authenticator) {
	// Public routes
	public := r.Group("/api")
	{
		public.GET("/health", ctrl.System.Health)
		public.POST("/auth/login", ctrl.Auth.Login)
	}
	r.GET("/ws", ctrl.System.WebSocket)

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		SetupReportRoutes(protected, ctrl.Reports)
		SetupAdminRoutes(protected, ctrl.Admin)
	}
}
