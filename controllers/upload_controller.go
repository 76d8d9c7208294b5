package controllers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/edu-safe/api-go/config"
	"github.com/edu-safe/api-go/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadController hands out presigned PUT URLs for report and story images
// stored in Cloudflare R2. The uploaded file's public URL goes into
// Report.ImageURL or Story.Image.
type UploadController struct {
	DB       *gorm.DB
	R2Client *s3.Client
	R2Config *config.R2Config
}

type ImageUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
	Purpose     string `json:"purpose" binding:"required,oneof=report story"`
}

type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

func NewUploadController(db *gorm.DB) *UploadController {
	r2Config := config.GetR2Config()

	r2Client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2Config.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			r2Config.AccessKeyID,
			r2Config.SecretAccessKey,
			"",
		),
		Region: r2Config.Region,
	})

	return &UploadController{
		DB:       db,
		R2Client: r2Client,
		R2Config: r2Config,
	}
}

// GetPresignedURL handles POST /api/upload/presigned-url.
func (uc *UploadController) GetPresignedURL(c *gin.Context) {
	user := utils.GetUser(c)

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	if !uc.isValidImage(req.ContentType, req.FileSize) {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Invalid image type or size"})
		return
	}

	key := uc.generateImageKey(user.UserID, req.Purpose, req.FileName)

	presignedURL, err := uc.createPresignedURL(key, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Failed to create upload URL"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Presigned URL generated successfully",
		Data: PresignedURLResponse{
			UploadURL: presignedURL,
			FileURL:   fmt.Sprintf("%s/%s", uc.R2Config.PublicURL, key),
			Key:       key,
			ExpiresIn: 3600,
		},
	})
}

// ConfirmUpload handles POST /api/upload/confirm: verifies the client
// actually put the object before the URL is attached to a report or story.
func (uc *UploadController) ConfirmUpload(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	exists, err := uc.verifyFileExists(req.Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Failed to verify file upload"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "File not found in storage"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Upload confirmed successfully",
		Data: gin.H{
			"key":        req.Key,
			"fileUrl":    fmt.Sprintf("%s/%s", uc.R2Config.PublicURL, req.Key),
			"uploadedAt": time.Now(),
		},
	})
}

// DeleteFile handles DELETE /api/upload/file/:key. The key encodes the
// uploader, so only the owner may delete.
func (uc *UploadController) DeleteFile(c *gin.Context) {
	user := utils.GetUser(c)
	key := strings.TrimPrefix(c.Param("key"), "/")

	if key == "" {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "File key is required"})
		return
	}

	if !uc.verifyFileOwnership(key, user.UserID) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied"})
		return
	}

	if err := uc.deleteFile(key); err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "File deleted successfully",
	})
}

func (uc *UploadController) isValidImage(contentType string, fileSize int64) bool {
	validTypes := []string{
		"image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic",
	}

	valid := false
	for _, t := range validTypes {
		if contentType == t {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	return fileSize <= 10*1024*1024 // 10MB
}

// Key format: uploads/{purpose}/{userID}/{timestamp}_{uuid}{ext}; ownership
// checks parse the userID segment back out.
func (uc *UploadController) generateImageKey(userID, purpose, fileName string) string {
	ext := filepath.Ext(fileName)
	id := uuid.New().String()
	timestamp := time.Now().Unix()

	return fmt.Sprintf("uploads/%s/%s/%d_%s%s", purpose, userID, timestamp, id, ext)
}

func (uc *UploadController) createPresignedURL(key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(uc.R2Config.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presigner := s3.NewPresignClient(uc.R2Client)
	req, err := presigner.PresignPutObject(context.TODO(), input, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (uc *UploadController) verifyFileExists(key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(uc.R2Config.BucketName),
		Key:    aws.String(key),
	}

	_, err := uc.R2Client.HeadObject(context.TODO(), input)
	if err != nil {
		return false, nil
	}

	return true, nil
}

func (uc *UploadController) deleteFile(key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(uc.R2Config.BucketName),
		Key:    aws.String(key),
	}

	_, err := uc.R2Client.DeleteObject(context.TODO(), input)
	return err
}

func (uc *UploadController) verifyFileOwnership(key, userID string) bool {
	parts := strings.Split(key, "/")
	if len(parts) < 3 {
		return false
	}

	return parts[2] == userID
}
