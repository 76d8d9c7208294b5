package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Story is a student-posted success story shown on the public feed.
type Story struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title   string `gorm:"not null;size:100" json:"title"`
	Content string `gorm:"not null;size:5000" json:"content"`

	AuthorID   string `gorm:"not null;size:24;index" json:"authorId"`
	Author     *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AuthorName string `gorm:"not null" json:"authorName"`

	Likes int            `gorm:"default:0" json:"likes"`
	Tags  pq.StringArray `gorm:"type:text[]" json:"tags"`
	Image string         `json:"image,omitempty"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}

// Validate returns one message per violated field.
func (s *Story) Validate() []string {
	var errs []string

	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, "Title is required")
	} else if utf8.RuneCountInString(s.Title) > 100 {
		errs = append(errs, "Title cannot exceed 100 characters")
	}

	if strings.TrimSpace(s.Content) == "" {
		errs = append(errs, "Content is required")
	} else if utf8.RuneCountInString(s.Content) > 5000 {
		errs = append(errs, "Content cannot exceed 5000 characters")
	}

	return errs
}
