package routes

import (
	"github.com/campus-lostfound/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupReportRoutes(r *gin.RouterGroup, reportController *controllers.ReportController) {
	reports := r.Group("/reports")
	{
		reports.POST("", reportController.Submit)
		reports.GET("/my", reportController.ListMine)
	}
}
