package routes

import (
	"github.com/edu-safe/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(public *gin.RouterGroup, leaderboardController *controllers.LeaderboardController) {
	users := public.Group("/users")
	{
		users.GET("/leaderboard", leaderboardController.GetLeaderboard)
	}
}
