package routes

import (
	"github.com/edu-safe/api-go/controllers"
	"github.com/edu-safe/api-go/middleware"
	"github.com/gin-gonic/gin"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController) {
	reports := protected.Group("/reports")
	{
		reports.POST("", reportController.CreateReport)
		reports.GET("/my-reports", reportController.GetMyReports)
		reports.GET("/:id", reportController.GetReport)

		reports.POST("/:id/vote", reportController.VoteReport)
		reports.POST("/:id/comments", reportController.CommentReport)

		// Staff surface; handlers consult the policy as well.
		staff := reports.Group("")
		staff.Use(middleware.RequireTeacherOrAdmin())
		{
			staff.GET("", reportController.GetReports)
			staff.GET("/stats/summary", reportController.GetReportStats)
			staff.PUT("/:id/assign", reportController.AssignReport)
			staff.PUT("/:id/resolve", reportController.ResolveReport)
			staff.PUT("/:id/status", reportController.UpdateReportStatus)
		}
	}
}
