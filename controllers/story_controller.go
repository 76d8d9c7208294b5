package controllers

import (
	"net/http"

	"github.com/edu-safe/api-go/models"
	"github.com/edu-safe/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StoryController struct {
	DB *gorm.DB
}

func NewStoryController(db *gorm.DB) *StoryController {
	return &StoryController{DB: db}
}

// GetStories handles GET /api/stories, newest first.
func (sc *StoryController) GetStories(c *gin.Context) {
	var stories []models.Story
	err := sc.DB.Preload("Author").Order("created_at desc").Find(&stories).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching stories"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"stories": stories, "count": len(stories)},
	})
}

// GetStory handles GET /api/stories/:id.
func (sc *StoryController) GetStory(c *gin.Context) {
	story, ok := sc.loadStory(c)
	if !ok {
		return
	}

	sc.DB.Preload("Author").First(story, "id = ?", story.ID)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"story": story},
	})
}

// CreateStory handles POST /api/stories.
func (sc *StoryController) CreateStory(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
		Image   string   `json:"image"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	story := models.Story{
		Title:      input.Title,
		Content:    input.Content,
		AuthorID:   claims.UserID,
		AuthorName: claims.Username,
		Tags:       input.Tags,
		Image:      input.Image,
	}

	if errs := story.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, StandardResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  errs,
		})
		return
	}

	if err := sc.DB.Create(&story).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while creating story"})
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    gin.H{"story": story},
	})
}

// UpdateStory handles PUT /api/stories/:id; only the author may edit.
func (sc *StoryController) UpdateStory(c *gin.Context) {
	claims := utils.GetUser(c)

	story, ok := sc.loadStory(c)
	if !ok {
		return
	}

	if story.AuthorID != claims.UserID {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Not authorized to update this story"})
		return
	}

	var input struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
		Image   string   `json:"image"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	if input.Title != "" {
		story.Title = input.Title
	}
	if input.Content != "" {
		story.Content = input.Content
	}
	if input.Tags != nil {
		story.Tags = input.Tags
	}
	if input.Image != "" {
		story.Image = input.Image
	}

	if errs := story.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, StandardResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  errs,
		})
		return
	}

	if err := sc.DB.Save(story).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while updating story"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"story": story},
	})
}

// DeleteStory handles DELETE /api/stories/:id; only the author may delete.
func (sc *StoryController) DeleteStory(c *gin.Context) {
	claims := utils.GetUser(c)

	story, ok := sc.loadStory(c)
	if !ok {
		return
	}

	if story.AuthorID != claims.UserID {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Not authorized to delete this story"})
		return
	}

	if err := sc.DB.Delete(story).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while deleting story"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{},
	})
}

// LikeStory handles POST /api/stories/:id/like, a bare counter increment.
func (sc *StoryController) LikeStory(c *gin.Context) {
	story, ok := sc.loadStory(c)
	if !ok {
		return
	}

	err := sc.DB.Model(story).Update("likes", gorm.Expr("likes + 1")).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while liking story"})
		return
	}

	sc.DB.First(story, "id = ?", story.ID)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"story": story},
	})
}

func (sc *StoryController) loadStory(c *gin.Context) (*models.Story, bool) {
	id := c.Param("id")

	if !models.IsValidID(id) {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Invalid story ID format"})
		return nil, false
	}

	var story models.Story
	err := sc.DB.First(&story, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Story not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching story"})
		return nil, false
	}

	return &story, true
}
