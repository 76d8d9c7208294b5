package models

import (
	"time"

	"gorm.io/gorm"
)

type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID         string    `json:"userId" gorm:"not null;size:24;index"`
	User           User      `json:"-" gorm:"foreignKey:UserID"`
	Token          string    `json:"token" gorm:"not null;index"`
	ExpirationDate time.Time `json:"expiry" gorm:"not null"`
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == "" {
		rt.ID = NewID()
	}
	return nil
}
