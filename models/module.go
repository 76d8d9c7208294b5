package models

import (
	"sort"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ModuleDifficulties = []string{"beginner", "intermediate", "advanced"}
	LessonTypes        = []string{"text", "video", "image", "interactive"}
)

type Lesson struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ModuleID      string `gorm:"not null;size:24;index" json:"moduleId"`
	Title         string `gorm:"not null;size:200" json:"title"`
	Content       string `gorm:"not null;type:text" json:"content"`
	Type          string `gorm:"not null;default:'text';size:20" json:"type"`
	VideoURL      string `json:"videoUrl,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Order         int    `gorm:"not null" json:"order"`
	EstimatedTime int    `gorm:"default:5" json:"estimatedTime"` // minutes
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

type ModuleRating struct {
	Average float64 `gorm:"default:0" json:"average"`
	Count   int     `gorm:"default:0" json:"count"`
}

// Module is a learning unit made of ordered lessons. Only published, active
// modules are visible on the public surface.
type Module struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title          string         `gorm:"not null;size:200" json:"title"`
	Description    string         `gorm:"not null;size:1000" json:"description"`
	Difficulty     string         `gorm:"not null;size:20;index" json:"difficulty"`
	Duration       string         `gorm:"not null" json:"duration"`
	EstimatedHours float64        `gorm:"not null" json:"estimatedHours"`
	Category       string         `gorm:"not null;size:50;index" json:"category"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags"`
	Prerequisites  pq.StringArray `gorm:"type:text[]" json:"prerequisites"` // module ids
	Thumbnail      string         `json:"thumbnail,omitempty"`

	InstructorID string `gorm:"not null;size:24;index" json:"instructorId"`
	Instructor   *User  `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`

	IsPublished     bool         `gorm:"default:false;index" json:"isPublished"`
	IsActive        bool         `gorm:"default:true;index" json:"isActive"`
	EnrollmentCount int          `gorm:"default:0" json:"enrollmentCount"`
	Rating          ModuleRating `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}

func (m *Module) LessonCount() int {
	return len(m.Lessons)
}

// TotalEstimatedTime sums the per-lesson estimates, in minutes.
func (m *Module) TotalEstimatedTime() int {
	total := 0
	for _, l := range m.Lessons {
		total += l.EstimatedTime
	}
	return total
}

// SortedLessons returns the lessons in display order.
func (m *Module) SortedLessons() []Lesson {
	lessons := make([]Lesson, len(m.Lessons))
	copy(lessons, m.Lessons)
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	return lessons
}
