package routes

import (
	"github.com/edu-safe/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupModuleRoutes(public *gin.RouterGroup, moduleController *controllers.ModuleController) {
	modules := public.Group("/modules")
	{
		modules.GET("", moduleController.GetModules)
		modules.GET("/:id", moduleController.GetModule)
		modules.GET("/:id/lessons", moduleController.GetModuleLessons)
		modules.GET("/:id/quiz", moduleController.GetModuleQuiz)
	}
}
