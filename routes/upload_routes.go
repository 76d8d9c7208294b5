package routes

import (
	"github.com/edu-safe/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUploadRoutes(protected *gin.RouterGroup, uploadController *controllers.UploadController) {
	upload := protected.Group("/upload")
	{
		upload.POST("/presigned-url", uploadController.GetPresignedURL)
		upload.POST("/confirm", uploadController.ConfirmUpload)
		// keys contain slashes, so this is a catch-all segment
		upload.DELETE("/file/*key", uploadController.DeleteFile)
	}
}
