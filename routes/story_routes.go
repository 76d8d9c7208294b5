package routes

import (
	"github.com/edu-safe/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupStoryRoutes(protected *gin.RouterGroup, storyController *controllers.StoryController) {
	stories := protected.Group("/stories")
	{
		stories.POST("", storyController.CreateStory)
		stories.PUT("/:id", storyController.UpdateStory)
		stories.DELETE("/:id", storyController.DeleteStory)
		stories.POST("/:id/like", storyController.LikeStory)
	}
}
