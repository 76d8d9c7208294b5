package controllers

import (
	"net/http"

	"github.com/edu-safe/api-go/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LeaderboardController struct {
	DB *gorm.DB
}

func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{DB: db}
}

type LeaderboardQuery struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Points   int64  `json:"points"`
}

// GetLeaderboard handles GET /api/users/leaderboard: top users by points.
func (lc *LeaderboardController) GetLeaderboard(c *gin.Context) {
	var query LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	var users []models.User
	err := lc.DB.Select("id", "username", "role", "points").
		Order("points desc").
		Limit(query.Limit).
		Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Server error while fetching leaderboard"})
		return
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = LeaderboardEntry{
			Rank:     i + 1,
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
			Points:   user.Points,
		}
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"leaderboard": entries, "count": len(entries)},
	})
}
