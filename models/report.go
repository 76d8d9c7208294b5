package models

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusPending       = "Pending"
	StatusInvestigating = "Investigating"
	StatusResolved      = "Resolved"

	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

var (
	ReportStatuses   = []string{StatusPending, StatusInvestigating, StatusResolved}
	ReportPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	ReportCategories = []string{"Safety", "Bullying", "Infrastructure", "Academic", "Behavioral", "Other"}
)

var imageURLPattern = regexp.MustCompile(`^https?://.+`)

// Resolution records how a report was closed. ResolvedAt is stamped at most
// once, on the first transition into Resolved (see Report.BeforeSave).
type Resolution struct {
	Description  string     `gorm:"size:1000" json:"description,omitempty"`
	ResolvedByID *string    `gorm:"size:24" json:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

type ReportComment struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	ReportID string `gorm:"not null;size:24;index" json:"reportId"`
	UserID   string `gorm:"not null;size:24" json:"userId"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Comment  string `gorm:"not null;size:500" json:"comment"`
}

func (rc *ReportComment) BeforeCreate(tx *gorm.DB) error {
	if rc.ID == "" {
		rc.ID = NewID()
	}
	return nil
}

// Report is the aggregate root for the safety-report lifecycle. Comments are
// an append-only child collection; upvotes/downvotes are sets of user IDs.
// All mutation goes through the methods below and the whole aggregate is
// persisted in one save.
type Report struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title       string         `gorm:"not null;size:200" json:"title"`
	Description string         `gorm:"not null;size:2000" json:"description"`
	Location    string         `gorm:"not null;size:200" json:"location"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Status      string         `gorm:"not null;default:'Pending';size:20;index" json:"status"`
	Priority    string         `gorm:"not null;default:'Medium';size:20;index" json:"priority"`
	Category    string         `gorm:"not null;size:30;index" json:"category"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	IsAnonymous bool           `gorm:"default:false" json:"isAnonymous"`
	IsPublic    bool           `gorm:"default:false" json:"isPublic"`

	ReportedByID string  `gorm:"not null;size:24;index" json:"reportedById"`
	ReportedBy   *User   `gorm:"foreignKey:ReportedByID" json:"reportedBy,omitempty"`
	AssignedToID *string `gorm:"size:24;index" json:"assignedToId,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`

	Resolution Resolution `gorm:"embedded;embeddedPrefix:resolution_" json:"resolution"`

	Comments  []ReportComment `gorm:"foreignKey:ReportID" json:"comments"`
	Upvotes   pq.StringArray  `gorm:"type:text[]" json:"upvotes"`
	Downvotes pq.StringArray  `gorm:"type:text[]" json:"downvotes"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	return nil
}

// MarshalJSON leaves resolution out of the payload until the report has
// actually been resolved; the embedded column struct would otherwise
// serialize as an empty object.
func (r Report) MarshalJSON() ([]byte, error) {
	type reportAlias Report
	payload := struct {
		reportAlias
		Resolution *Resolution `json:"resolution,omitempty"`
	}{reportAlias: reportAlias(r)}

	if r.Resolution.ResolvedAt != nil {
		payload.Resolution = &r.Resolution
	}
	return json.Marshal(payload)
}

// BeforeSave stamps the resolution time the first time a report reaches
// Resolved, no matter which operation set the status. A report that is
// already stamped keeps its original timestamp.
func (r *Report) BeforeSave(tx *gorm.DB) error {
	if r.Status == StatusResolved && r.Resolution.ResolvedAt == nil {
		now := time.Now()
		r.Resolution.ResolvedAt = &now
	}
	return nil
}

// Validate checks every field and returns one message per violation, so the
// client sees the full list rather than the first failure. Length limits
// count characters, not bytes.
func (r *Report) Validate() []string {
	var errs []string

	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, "Report title is required")
	} else if utf8.RuneCountInString(r.Title) > 200 {
		errs = append(errs, "Report title cannot exceed 200 characters")
	}

	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, "Report description is required")
	} else if utf8.RuneCountInString(r.Description) > 2000 {
		errs = append(errs, "Report description cannot exceed 2000 characters")
	}

	if strings.TrimSpace(r.Location) == "" {
		errs = append(errs, "Report location is required")
	} else if utf8.RuneCountInString(r.Location) > 200 {
		errs = append(errs, "Location cannot exceed 200 characters")
	}

	if r.ImageURL != "" && !imageURLPattern.MatchString(r.ImageURL) {
		errs = append(errs, "Image URL must be a valid URL")
	}

	if r.Status != "" && !contains(ReportStatuses, r.Status) {
		errs = append(errs, "Status must be Pending, Investigating, or Resolved")
	}

	if r.Priority != "" && !contains(ReportPriorities, r.Priority) {
		errs = append(errs, "Priority must be Low, Medium, High, or Critical")
	}

	if strings.TrimSpace(r.Category) == "" {
		errs = append(errs, "Report category is required")
	} else if !contains(ReportCategories, r.Category) {
		errs = append(errs, "Category must be Safety, Bullying, Infrastructure, Academic, Behavioral, or Other")
	}

	for _, tag := range r.Tags {
		if utf8.RuneCountInString(tag) > 30 {
			errs = append(errs, "Tag cannot exceed 30 characters")
			break
		}
	}

	if utf8.RuneCountInString(r.Resolution.Description) > 1000 {
		errs = append(errs, "Resolution description cannot exceed 1000 characters")
	}

	return errs
}

// Upvote moves userID into the upvote set. Membership in both sets at once
// is never possible; voting the same direction twice is a no-op.
func (r *Report) Upvote(userID string) {
	r.Downvotes = remove(r.Downvotes, userID)
	if !contains(r.Upvotes, userID) {
		r.Upvotes = append(r.Upvotes, userID)
	}
}

// Downvote is the mirror of Upvote.
func (r *Report) Downvote(userID string) {
	r.Upvotes = remove(r.Upvotes, userID)
	if !contains(r.Downvotes, userID) {
		r.Downvotes = append(r.Downvotes, userID)
	}
}

// AddComment appends to the comment sequence. Length validation happens in
// the handler before the aggregate is touched.
func (r *Report) AddComment(userID, comment string) {
	r.Comments = append(r.Comments, ReportComment{
		ReportID:  r.ID,
		UserID:    userID,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
}

// Resolve marks the report resolved. The resolution record is written only
// on the first call; repeated resolutions keep the original resolver and
// timestamp (last-write-wins races on the status column itself are accepted).
func (r *Report) Resolve(userID, description string) {
	r.Status = StatusResolved
	if r.Resolution.ResolvedAt == nil {
		now := time.Now()
		r.Resolution = Resolution{
			Description:  description,
			ResolvedByID: &userID,
			ResolvedAt:   &now,
		}
	}
}

func (r *Report) VoteCount() int {
	return len(r.Upvotes) - len(r.Downvotes)
}

func (r *Report) CommentCount() int {
	return len(r.Comments)
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func remove(set pq.StringArray, s string) pq.StringArray {
	out := set[:0]
	for _, v := range set {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
