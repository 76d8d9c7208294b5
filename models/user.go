package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Username string `gorm:"unique;not null;size:30" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role     string `gorm:"not null;default:'student';size:20" json:"role"`
	Points   int64  `gorm:"not null;default:0" json:"points"`

	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// IsStaff reports whether the user may use the teacher/admin surface
// (reports dashboard, assignment, resolution, stats).
func (u *User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
