package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/edu-safe/api-go/models"
	"github.com/edu-safe/api-go/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// reportTestRouter wires the report handlers behind a stub that injects the
// given claims, standing in for the JWT middleware.
func reportTestRouter(rc *ReportController, claims *utils.UserClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(string(utils.UserContextKey), claims)
		}
	})

	r.POST("/api/reports", rc.CreateReport)
	r.GET("/api/reports", rc.GetReports)
	r.GET("/api/reports/my-reports", rc.GetMyReports)
	r.GET("/api/reports/stats/summary", rc.GetReportStats)
	r.GET("/api/reports/:id", rc.GetReport)
	r.POST("/api/reports/:id/vote", rc.VoteReport)
	r.POST("/api/reports/:id/comments", rc.CommentReport)
	r.PUT("/api/reports/:id/assign", rc.AssignReport)
	r.PUT("/api/reports/:id/resolve", rc.ResolveReport)
	r.PUT("/api/reports/:id/status", rc.UpdateReportStatus)
	return r
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) StandardResponse {
	t.Helper()
	var resp StandardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodePagination pulls the pagination envelope out of the data object,
// where list responses carry it.
func decodePagination(t *testing.T, w *httptest.ResponseRecorder) Pagination {
	t.Helper()
	var resp struct {
		Data struct {
			Pagination Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Pagination
}

func studentClaims(id string) *utils.UserClaims {
	return &utils.UserClaims{UserID: id, Username: "student-" + id[:6], Role: models.RoleStudent}
}

// The fast-path tests below never reach the database, so a nil handle is fine.

func TestGetReportRejectsMalformedID(t *testing.T) {
	router := reportTestRouter(NewReportController(nil), studentClaims(models.NewID()))

	w := doJSON(t, router, http.MethodGet, "/api/reports/not-hex", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid report ID format", decodeResponse(t, w).Message)
}

func TestVoteReportRejectsMalformedID(t *testing.T) {
	router := reportTestRouter(NewReportController(nil), studentClaims(models.NewID()))

	w := doJSON(t, router, http.MethodPost, "/api/reports/xyz/vote", gin.H{"direction": "up"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoteReportRejectsBadDirection(t *testing.T) {
	router := reportTestRouter(NewReportController(nil), studentClaims(models.NewID()))

	w := doJSON(t, router, http.MethodPost, "/api/reports/"+models.NewID()+"/vote", gin.H{"direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReportsDeniesStudents(t *testing.T) {
	router := reportTestRouter(NewReportController(nil), studentClaims(models.NewID()))

	assert.Equal(t, http.StatusForbidden, doJSON(t, router, http.MethodGet, "/api/reports", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, router, http.MethodGet, "/api/reports/stats/summary", nil).Code)
}

func TestResolveReportDeniesStudents(t *testing.T) {
	router := reportTestRouter(NewReportController(nil), studentClaims(models.NewID()))

	w := doJSON(t, router, http.MethodPut, "/api/reports/"+models.NewID()+"/resolve", gin.H{"description": "done"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// testDB opens the database named by TEST_DATABASE_URL and resets the report
// tables. Tests that need it are skipped when the variable is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Report{}, &models.ReportComment{}))

	require.NoError(t, db.Exec("DELETE FROM report_comments").Error)
	require.NoError(t, db.Exec("DELETE FROM reports").Error)
	require.NoError(t, db.Exec("DELETE FROM users").Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	id := models.NewID()
	user := &models.User{
		ID:       id,
		Username: role + "-" + id[:8],
		Email:    id + "@test.local",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestReportLifecycle(t *testing.T) {
	db := testDB(t)
	rc := NewReportController(db)

	owner := seedUser(t, db, models.RoleStudent)
	other := seedUser(t, db, models.RoleStudent)
	teacher := seedUser(t, db, models.RoleTeacher)

	ownerRouter := reportTestRouter(rc, &utils.UserClaims{UserID: owner.ID, Username: owner.Username, Role: owner.Role})
	otherRouter := reportTestRouter(rc, &utils.UserClaims{UserID: other.ID, Username: other.Username, Role: other.Role})
	teacherRouter := reportTestRouter(rc, &utils.UserClaims{UserID: teacher.ID, Username: teacher.Username, Role: teacher.Role})

	// create
	w := doJSON(t, ownerRouter, http.MethodPost, "/api/reports", gin.H{
		"title":       "Flickering lights in gym",
		"description": "The lights above the west bleachers flicker constantly.",
		"location":    "Gymnasium",
		"category":    "Infrastructure",
		"priority":    "High",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Report
	require.NoError(t, db.First(&created, "reported_by_id = ?", owner.ID).Error)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, models.PriorityHigh, created.Priority)
	reportPath := "/api/reports/" + created.ID

	// validation failure returns the full message list
	w = doJSON(t, ownerRouter, http.MethodPost, "/api/reports", gin.H{"category": "Nonsense"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Len(t, resp.Errors, 4)

	// visibility
	assert.Equal(t, http.StatusOK, doJSON(t, ownerRouter, http.MethodGet, reportPath, nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, otherRouter, http.MethodGet, reportPath, nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, teacherRouter, http.MethodGet, reportPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, ownerRouter, http.MethodGet, "/api/reports/"+models.NewID(), nil).Code)

	// voting: other student upvotes then switches to down
	require.Equal(t, http.StatusOK, doJSON(t, otherRouter, http.MethodPost, reportPath+"/vote", gin.H{"direction": "up"}).Code)
	require.Equal(t, http.StatusOK, doJSON(t, otherRouter, http.MethodPost, reportPath+"/vote", gin.H{"direction": "down"}).Code)

	var voted models.Report
	require.NoError(t, db.First(&voted, "id = ?", created.ID).Error)
	assert.Empty(t, voted.Upvotes)
	assert.Equal(t, []string{other.ID}, []string(voted.Downvotes))

	// commenting
	require.Equal(t, http.StatusOK, doJSON(t, otherRouter, http.MethodPost, reportPath+"/comments", gin.H{"comment": "Noticed this too"}).Code)
	var commentCount int64
	require.NoError(t, db.Model(&models.ReportComment{}).Where("report_id = ?", created.ID).Count(&commentCount).Error)
	assert.Equal(t, int64(1), commentCount)

	// assignment
	w = doJSON(t, teacherRouter, http.MethodPut, reportPath+"/assign", gin.H{"assignedTo": teacher.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(t, teacherRouter, http.MethodPut, reportPath+"/assign", gin.H{"assignedTo": models.NewID()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// status then resolution
	require.Equal(t, http.StatusOK, doJSON(t, teacherRouter, http.MethodPut, reportPath+"/status", gin.H{"status": "Investigating"}).Code)
	require.Equal(t, http.StatusOK, doJSON(t, teacherRouter, http.MethodPut, reportPath+"/resolve", gin.H{"description": "Ballasts replaced"}).Code)

	var resolved models.Report
	require.NoError(t, db.First(&resolved, "id = ?", created.ID).Error)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.Resolution.ResolvedAt)
	require.NotNil(t, resolved.Resolution.ResolvedByID)
	assert.Equal(t, teacher.ID, *resolved.Resolution.ResolvedByID)
	assert.Equal(t, "Ballasts replaced", resolved.Resolution.Description)

	// re-resolving keeps the original record
	first := *resolved.Resolution.ResolvedAt
	require.Equal(t, http.StatusOK, doJSON(t, teacherRouter, http.MethodPut, reportPath+"/resolve", gin.H{"description": "Duplicate"}).Code)
	require.NoError(t, db.First(&resolved, "id = ?", created.ID).Error)
	assert.True(t, resolved.Resolution.ResolvedAt.Equal(first))
	assert.Equal(t, "Ballasts replaced", resolved.Resolution.Description)
}

func TestReportListingAndStats(t *testing.T) {
	db := testDB(t)
	rc := NewReportController(db)

	student := seedUser(t, db, models.RoleStudent)
	teacher := seedUser(t, db, models.RoleTeacher)
	teacherRouter := reportTestRouter(rc, &utils.UserClaims{UserID: teacher.ID, Role: teacher.Role})
	studentRouter := reportTestRouter(rc, &utils.UserClaims{UserID: student.ID, Role: student.Role})

	seed := []models.Report{
		{Title: "Spilled chemicals", Description: "Lab bench 3", Location: "Science wing", Category: "Safety", Priority: "Critical", ReportedByID: student.ID},
		{Title: "Name calling in hallway", Description: "Repeated incidents", Location: "Hall C", Category: "Bullying", ReportedByID: student.ID},
		{Title: "Loose railing", Description: "Second floor stairs", Location: "Stairwell B", Category: "Infrastructure", Status: models.StatusResolved, ReportedByID: teacher.ID},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	// staff listing with filters and pagination inside the data object
	w := doJSON(t, teacherRouter, http.MethodGet, "/api/reports?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodePagination(t, w)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)

	w = doJSON(t, teacherRouter, http.MethodGet, "/api/reports?status=Resolved", nil)
	assert.Equal(t, int64(1), decodePagination(t, w).TotalItems)

	// out-of-enum filter values are ignored, not applied
	w = doJSON(t, teacherRouter, http.MethodGet, "/api/reports?status=Closed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), decodePagination(t, w).TotalItems)

	w = doJSON(t, teacherRouter, http.MethodGet, "/api/reports?priority=Critical", nil)
	assert.Equal(t, int64(1), decodePagination(t, w).TotalItems)

	w = doJSON(t, teacherRouter, http.MethodGet, "/api/reports?search=railing", nil)
	assert.Equal(t, int64(1), decodePagination(t, w).TotalItems)

	w = doJSON(t, teacherRouter, http.MethodGet, "/api/reports?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// my-reports is scoped to the caller
	w = doJSON(t, studentRouter, http.MethodGet, "/api/reports/my-reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decodePagination(t, w).TotalItems)

	// stats
	w = doJSON(t, teacherRouter, http.MethodGet, "/api/reports/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Data struct {
			TotalReports         int64 `json:"totalReports"`
			PendingReports       int64 `json:"pendingReports"`
			InvestigatingReports int64 `json:"investigatingReports"`
			ResolvedReports      int64 `json:"resolvedReports"`
			RecentReports        int64 `json:"recentReports"`
			CategoryBreakdown    []struct {
				Value string `json:"value"`
				Count int64  `json:"count"`
			} `json:"categoryBreakdown"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Data.TotalReports)
	assert.Equal(t, int64(2), stats.Data.PendingReports)
	assert.Equal(t, int64(0), stats.Data.InvestigatingReports)
	assert.Equal(t, int64(1), stats.Data.ResolvedReports)
	assert.Equal(t, int64(3), stats.Data.RecentReports)
	assert.Len(t, stats.Data.CategoryBreakdown, 3)
}

// Votes from different users arriving at the same time must all land; the
// row lock serializes the read-modify-write on the vote columns.
func TestConcurrentVotesFromDistinctUsers(t *testing.T) {
	db := testDB(t)
	rc := NewReportController(db)

	owner := seedUser(t, db, models.RoleStudent)
	report := models.Report{
		Title:        "Ice on front steps",
		Description:  "Main entrance steps are untreated",
		Location:     "Front entrance",
		Category:     "Safety",
		ReportedByID: owner.ID,
	}
	require.NoError(t, db.Create(&report).Error)

	const voters = 8
	voterIDs := make([]string, voters)
	routers := make([]*gin.Engine, voters)
	for i := 0; i < voters; i++ {
		voter := seedUser(t, db, models.RoleStudent)
		voterIDs[i] = voter.ID
		routers[i] = reportTestRouter(rc, &utils.UserClaims{UserID: voter.ID, Username: voter.Username, Role: voter.Role})
	}

	codes := make(chan int, voters)
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(router *gin.Engine) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/reports/"+report.ID+"/vote",
				bytes.NewBufferString(`{"direction":"up"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes <- w.Code
		}(routers[i])
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	var final models.Report
	require.NoError(t, db.First(&final, "id = ?", report.ID).Error)
	assert.ElementsMatch(t, voterIDs, []string(final.Upvotes))
	assert.Empty(t, final.Downvotes)
}
