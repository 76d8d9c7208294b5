package routes

import (
	"github.com/edu-safe/api-go/controllers"
	"github.com/edu-safe/api-go/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	authController := controllers.NewAuthController(db)
	reportController := controllers.NewReportController(db)
	moduleController := controllers.NewModuleController(db)
	storyController := controllers.NewStoryController(db)
	leaderboardController := controllers.NewLeaderboardController(db)
	uploadController := controllers.NewUploadController(db)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)
		public.POST("/auth/refresh-token", authController.RefreshToken)

		SetupModuleRoutes(public, moduleController)
		SetupUserRoutes(public, leaderboardController)

		public.GET("/stories", storyController.GetStories)
		public.GET("/stories/:id", storyController.GetStory)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/logout", authController.Logout)
		protected.GET("/auth/profile", authController.GetProfile)

		SetupReportRoutes(protected, reportController)
		SetupStoryRoutes(protected, storyController)
		SetupUploadRoutes(protected, uploadController)

		protected.POST("/modules/:id/quiz/submit", moduleController.SubmitModuleQuiz)
	}
}
