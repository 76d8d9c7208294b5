package controllers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/edu-safe/api-go/models"
	"github.com/edu-safe/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ModuleController struct {
	DB *gorm.DB
}

func NewModuleController(db *gorm.DB) *ModuleController {
	return &ModuleController{DB: db}
}

type ModuleListQuery struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit,default=10" binding:"min=1,max=100"`
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Category   string `form:"category"`
	Search     string `form:"search"`
	SortBy     string `form:"sortBy,default=createdAt"`
	SortOrder  string `form:"sortOrder,default=desc" binding:"omitempty,oneof=asc desc"`
}

var moduleSortColumns = map[string]string{
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"title":          "title",
	"difficulty":     "difficulty",
	"category":       "category",
	"estimatedHours": "estimated_hours",
}

// GetModules handles GET /api/modules: the public catalog of published,
// active modules. Lessons are left out of the list view.
func (mc *ModuleController) GetModules(c *gin.Context) {
	var query ModuleListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	q := mc.DB.Model(&models.Module{}).Where("is_published = ? AND is_active = ?", true, true)

	if query.Difficulty != "" {
		q = q.Where("difficulty = ?", query.Difficulty)
	}
	if query.Category != "" {
		q = q.Where("category ILIKE ?", "%"+query.Category+"%")
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR category ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching modules"})
		return
	}

	column, ok := moduleSortColumns[query.SortBy]
	if !ok {
		column = "created_at"
	}
	order := column + " desc"
	if query.SortOrder == "asc" {
		order = column + " asc"
	}

	var modules []models.Module
	err := q.Preload("Instructor").
		Order(order).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&modules).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching modules"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"modules":    modules,
			"pagination": NewPagination(query.Page, query.Limit, total),
		},
	})
}

// GetModule handles GET /api/modules/:id.
func (mc *ModuleController) GetModule(c *gin.Context) {
	module, ok := mc.loadModule(c, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"module":             module,
			"lessonCount":        module.LessonCount(),
			"totalEstimatedTime": module.TotalEstimatedTime(),
		},
	})
}

// GetModuleLessons handles GET /api/modules/:id/lessons, sorted by display
// order.
func (mc *ModuleController) GetModuleLessons(c *gin.Context) {
	module, ok := mc.loadModule(c, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"moduleTitle": module.Title,
			"lessons":     module.SortedLessons(),
		},
	})
}

// GetModuleQuiz handles GET /api/modules/:id/quiz. The answer key is
// stripped before the quiz leaves the server; question and option order is
// shuffled when the quiz asks for it.
func (mc *ModuleController) GetModuleQuiz(c *gin.Context) {
	module, ok := mc.loadModule(c, false)
	if !ok {
		return
	}

	quiz, ok := mc.loadModuleQuiz(c, module.ID)
	if !ok {
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	quiz.ShuffleQuestions(rng)
	quiz.ShuffleOptions(rng)
	quiz.Sanitize()

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"quiz":                quiz,
			"questionCount":       quiz.QuestionCount(),
			"totalPoints":         quiz.TotalPoints(),
			"averageQuestionTime": quiz.AverageQuestionTime(),
		},
	})
}

// SubmitModuleQuiz handles POST /api/modules/:id/quiz/submit. The submission
// is graded server-side and earned points are added to the caller's balance.
func (mc *ModuleController) SubmitModuleQuiz(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		Answers map[string][]string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	module, ok := mc.loadModule(c, false)
	if !ok {
		return
	}

	quiz, ok := mc.loadModuleQuiz(c, module.ID)
	if !ok {
		return
	}

	result := quiz.Grade(input.Answers)

	if result.EarnedPoints > 0 {
		err := mc.DB.Model(&models.User{}).
			Where("id = ?", claims.UserID).
			Update("points", gorm.Expr("points + ?", result.EarnedPoints)).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while recording quiz result"})
			return
		}
	}

	data := gin.H{"result": result}
	if quiz.ShowCorrectAnswers {
		answerKey := make(map[string][]string, len(quiz.Questions))
		for _, question := range quiz.Questions {
			answerKey[question.ID] = question.CorrectOptionIDs()
		}
		data["answerKey"] = answerKey
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Quiz graded",
		Data:    data,
	})
}

func (mc *ModuleController) loadModule(c *gin.Context, withLessons bool) (*models.Module, bool) {
	id := c.Param("id")

	if !models.IsValidID(id) {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Invalid module ID format"})
		return nil, false
	}

	q := mc.DB.Where("id = ? AND is_published = ? AND is_active = ?", id, true, true).
		Preload("Instructor")
	if withLessons {
		q = q.Preload("Lessons")
	}

	var module models.Module
	err := q.First(&module).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Module not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching module"})
		return nil, false
	}

	return &module, true
}

func (mc *ModuleController) loadModuleQuiz(c *gin.Context, moduleID string) (*models.Quiz, bool) {
	var quiz models.Quiz
	err := mc.DB.Where("module_id = ? AND is_published = ? AND is_active = ?", moduleID, true, true).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" asc") }).
		Preload("Questions.Options").
		Preload("Instructor").
		First(&quiz).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "No quiz found for this module"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching module quiz"})
		return nil, false
	}

	return &quiz, true
}
