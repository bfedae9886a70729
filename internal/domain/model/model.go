package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName            string
	LastName             string
	Email                string `gorm:"uniqueIndex;not null"`
	PasswordHash         string `gorm:"not null"`
	RefreshToken         string `gorm:"not null;default:''"`
	PasswordResetToken   *string
	PasswordResetExpires *time.Time
	ProfileTitle         string `gorm:"not null;default:''"`
	Bio                  string `gorm:"not null;default:''"`
	ProfileImage         string `gorm:"not null;default:''"`
	BackgroundColor      string `gorm:"not null;default:'#3E2723'"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Link struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	URL       string    `gorm:"not null" json:"url"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserID       uuid.UUID
}
