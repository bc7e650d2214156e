package routes

import (
	"github.com/campus-lostfound/api-go/controllers"
	"github.com/campus-lostfound/api-go/middleware"
	"github.com/gin-gonic/gin"
)

func SetupAdminRoutes(r *gin.RouterGroup, adminController *controllers.AdminController) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/reports", adminController.ListReports)
		admin.GET("/matches", adminController.ListMatches)
		admin.PATCH("/reports/:id/status", adminController.UpdateStatus)
	}
}
