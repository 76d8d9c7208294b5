package controllers

import (
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/edu-safe/api-go/models"
	"github.com/edu-safe/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

type CreateReportInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	ImageURL    string   `json:"imageUrl"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	IsAnonymous bool     `json:"isAnonymous"`
	IsPublic    bool     `json:"isPublic"`
}

type ReportListQuery struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	Limit     int    `form:"limit,default=10" binding:"min=1,max=100"`
	Status    string `form:"status"`
	Category  string `form:"category"`
	Priority  string `form:"priority"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy,default=createdAt"`
	SortOrder string `form:"sortOrder,default=desc" binding:"omitempty,oneof=asc desc"`
}

// inEnum reports whether v is one of the allowed values. Filter parameters
// outside their enum are ignored rather than rejected, so an unknown status
// yields the unfiltered set instead of an empty page.
func inEnum(values []string, v string) bool {
	for _, allowed := range values {
		if v == allowed {
			return true
		}
	}
	return false
}

// sortColumns is the allowlist of sortable fields; anything else falls back
// to createdAt.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"category":  "category",
	"location":  "location",
}

// CreateReport handles POST /api/reports.
func (rc *ReportController) CreateReport(c *gin.Context) {
	claims := utils.GetUser(c)

	var input CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	report := models.Report{
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		ImageURL:     input.ImageURL,
		Category:     input.Category,
		Priority:     input.Priority,
		Tags:         input.Tags,
		IsAnonymous:  input.IsAnonymous,
		IsPublic:     input.IsPublic,
		Status:       models.StatusPending,
		ReportedByID: claims.UserID,
	}

	if errs := report.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, StandardResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  errs,
		})
		return
	}

	if err := rc.DB.Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while creating report"})
		return
	}

	// re-read with the reporter populated for the response
	rc.DB.Preload("ReportedBy").First(&report, "id = ?", report.ID)

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Message: "Report created successfully",
		Data:    gin.H{"report": report},
	})
}

// GetReports handles GET /api/reports, the staff dashboard listing.
func (rc *ReportController) GetReports(c *gin.Context) {
	claims := utils.GetUser(c)
	if !utils.CanPerform(claims, utils.ActionListReports, nil) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied. Teacher or admin role required."})
		return
	}

	var query ReportListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	q := rc.DB.Model(&models.Report{})

	if inEnum(models.ReportStatuses, query.Status) {
		q = q.Where("status = ?", query.Status)
	}
	if inEnum(models.ReportCategories, query.Category) {
		q = q.Where("category = ?", query.Category)
	}
	if inEnum(models.ReportPriorities, query.Priority) {
		q = q.Where("priority = ?", query.Priority)
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching reports"})
		return
	}

	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = "created_at"
	}
	order := column + " desc"
	if query.SortOrder == "asc" {
		order = column + " asc"
	}

	var reports []models.Report
	err := q.Preload("ReportedBy").
		Preload("AssignedTo").
		Order(order).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&reports).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching reports"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"reports":    reports,
			"pagination": NewPagination(query.Page, query.Limit, total),
		},
	})
}

// GetMyReports handles GET /api/reports/my-reports: the staff listing scoped
// to reports the caller filed.
func (rc *ReportController) GetMyReports(c *gin.Context) {
	claims := utils.GetUser(c)

	var query ReportListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	q := rc.DB.Model(&models.Report{}).Where("reported_by_id = ?", claims.UserID)

	if inEnum(models.ReportStatuses, query.Status) {
		q = q.Where("status = ?", query.Status)
	}
	if inEnum(models.ReportCategories, query.Category) {
		q = q.Where("category = ?", query.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching user reports"})
		return
	}

	var reports []models.Report
	err := q.Preload("ReportedBy").
		Preload("AssignedTo").
		Order("created_at desc").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&reports).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching user reports"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"reports":    reports,
			"pagination": NewPagination(query.Page, query.Limit, total),
		},
	})
}

// GetReport handles GET /api/reports/:id. Owners see their own reports,
// staff see everything.
func (rc *ReportController) GetReport(c *gin.Context) {
	claims := utils.GetUser(c)
	id := c.Param("id")

	if !models.IsValidID(id) {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Invalid report ID format"})
		return
	}

	var report models.Report
	err := rc.DB.Preload("ReportedBy").
		Preload("AssignedTo").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Comments.User").
		First(&report, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching report"})
		return
	}

	if !utils.CanPerform(claims, utils.ActionViewReport, &report) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied. You can only view your own reports."})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"report": report},
	})
}

type statCount struct {
	Value string `gorm:"column:value" json:"value"`
	Count int64  `gorm:"column:count" json:"count"`
}

// GetReportStats handles GET /api/reports/stats/summary. All counts come
// from one read transaction so the numbers are consistent with each other.
func (rc *ReportController) GetReportStats(c *gin.Context) {
	claims := utils.GetUser(c)
	if !utils.CanPerform(claims, utils.ActionViewStats, nil) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied. Teacher or admin role required."})
		return
	}

	var (
		total, pending, investigating, resolved, recent int64
		categoryBreakdown, priorityBreakdown            []statCount
	)

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Report{}).Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Report{}).Where("status = ?", models.StatusPending).Count(&pending).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Report{}).Where("status = ?", models.StatusInvestigating).Count(&investigating).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Report{}).Where("status = ?", models.StatusResolved).Count(&resolved).Error; err != nil {
			return err
		}

		sevenDaysAgo := time.Now().AddDate(0, 0, -7)
		if err := tx.Model(&models.Report{}).Where("created_at >= ?", sevenDaysAgo).Count(&recent).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Report{}).
			Select("category as value, count(*) as count").
			Group("category").Order("count desc").
			Scan(&categoryBreakdown).Error; err != nil {
			return err
		}
		return tx.Model(&models.Report{}).
			Select("priority as value, count(*) as count").
			Group("priority").Order("count desc").
			Scan(&priorityBreakdown).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching report statistics"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"totalReports":         total,
			"pendingReports":       pending,
			"investigatingReports": investigating,
			"resolvedReports":      resolved,
			"recentReports":        recent,
			"categoryBreakdown":    categoryBreakdown,
			"priorityBreakdown":    priorityBreakdown,
		},
	})
}

// VoteReport handles POST /api/reports/:id/vote. Voting is idempotent per
// direction; switching direction moves the caller between the two sets. The
// row is locked for the read-modify-write so concurrent votes from
// different users never overwrite each other.
func (rc *ReportController) VoteReport(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		Direction string `json:"direction" binding:"required,oneof=up down"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	id := c.Param("id")
	if !models.IsValidID(id) {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Invalid report ID format"})
		return
	}

	if !utils.CanPerform(claims, utils.ActionVoteReport, nil) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied"})
		return
	}

	var report models.Report
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&report, "id = ?", id).Error; err != nil {
			return err
		}

		if input.Direction == "up" {
			report.Upvote(claims.UserID)
		} else {
			report.Downvote(claims.UserID)
		}

		return tx.Model(&report).Updates(map[string]interface{}{
			"upvotes":   report.Upvotes,
			"downvotes": report.Downvotes,
		}).Error
	})
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while voting on report"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Vote recorded",
		Data:    gin.H{"report": report, "voteCount": report.VoteCount()},
	})
}

// CommentReport handles POST /api/reports/:id/comments. Any authenticated
// identity may comment on any report.
func (rc *ReportController) CommentReport(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}
	if utf8.RuneCountInString(input.Comment) > 500 {
		c.JSON(http.StatusBadRequest, StandardResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  []string{"Comment cannot exceed 500 characters"},
		})
		return
	}

	report, ok := rc.loadReport(c)
	if !ok {
		return
	}

	if !utils.CanPerform(claims, utils.ActionCommentReport, report) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied"})
		return
	}

	comment := models.ReportComment{
		ReportID: report.ID,
		UserID:   claims.UserID,
		Comment:  input.Comment,
	}
	if err := rc.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while adding comment"})
		return
	}

	rc.DB.Preload("User").First(&comment, "id = ?", comment.ID)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Comment added",
		Data:    gin.H{"comment": comment},
	})
}

// AssignReport handles PUT /api/reports/:id/assign (staff only).
func (rc *ReportController) AssignReport(c *gin.Context) {
	claims := utils.GetUser(c)
	if !utils.CanPerform(claims, utils.ActionAssignReport, nil) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied. Teacher or admin role required."})
		return
	}

	var input struct {
		AssignedTo string `json:"assignedTo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}
	if !models.IsValidID(input.AssignedTo) {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Invalid assignee ID format"})
		return
	}

	var assignee models.User
	if err := rc.DB.First(&assignee, "id = ?", input.AssignedTo).Error; err != nil {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Assignee not found"})
		return
	}

	report, ok := rc.loadReport(c)
	if !ok {
		return
	}

	report.AssignedToID = &assignee.ID
	if err := rc.DB.Model(report).Update("assigned_to_id", assignee.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while assigning report"})
		return
	}

	rc.DB.Preload("ReportedBy").Preload("AssignedTo").First(report, "id = ?", report.ID)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Report assigned",
		Data:    gin.H{"report": report},
	})
}

// ResolveReport handles PUT /api/reports/:id/resolve (staff only). The
// resolution record is written once; re-resolving keeps the original
// resolver and timestamp.
func (rc *ReportController) ResolveReport(c *gin.Context) {
	claims := utils.GetUser(c)
	if !utils.CanPerform(claims, utils.ActionResolveReport, nil) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied. Teacher or admin role required."})
		return
	}

	var input struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}
	if utf8.RuneCountInString(input.Description) > 1000 {
		c.JSON(http.StatusBadRequest, StandardResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  []string{"Resolution description cannot exceed 1000 characters"},
		})
		return
	}

	report, ok := rc.loadReport(c)
	if !ok {
		return
	}

	report.Resolve(claims.UserID, input.Description)

	if err := rc.DB.Save(report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while resolving report"})
		return
	}

	rc.DB.Preload("ReportedBy").Preload("AssignedTo").First(report, "id = ?", report.ID)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Report resolved",
		Data:    gin.H{"report": report},
	})
}

// UpdateReportStatus handles PUT /api/reports/:id/status (staff only). Any
// of the three values may be set; there is deliberately no transition table,
// so Resolved can be reopened. The first transition into Resolved still
// stamps the resolution time (BeforeSave).
func (rc *ReportController) UpdateReportStatus(c *gin.Context) {
	claims := utils.GetUser(c)
	if !utils.CanPerform(claims, utils.ActionSetStatus, nil) {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Access denied. Teacher or admin role required."})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required,oneof=Pending Investigating Resolved"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	report, ok := rc.loadReport(c)
	if !ok {
		return
	}

	report.Status = input.Status
	if err := rc.DB.Save(report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while updating report status"})
		return
	}

	rc.DB.Preload("ReportedBy").Preload("AssignedTo").First(report, "id = ?", report.ID)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Report status updated",
		Data:    gin.H{"report": report},
	})
}

// loadReport validates the :id path segment and fetches the bare aggregate.
// It writes the error response itself and reports success via the bool.
func (rc *ReportController) loadReport(c *gin.Context) (*models.Report, bool) {
	id := c.Param("id")

	if !models.IsValidID(id) {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Invalid report ID format"})
		return nil, false
	}

	var report models.Report
	err := rc.DB.First(&report, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Report not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching report"})
		return nil, false
	}

	return &report, true
}
