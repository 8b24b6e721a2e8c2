// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LoginDateLayout = "02-01-2006"
	LoginTimeLayout = "03:04 PM"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username      string    `gorm:"size:80;uniqueIndex;not null"`
	Email         string    `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash  string    `gorm:"size:255;not null"`
	VisitCount    int       `gorm:"default:0"`
	LastLoginDate string    `gorm:"size:20"`
	LastLoginTime string    `gorm:"size:20"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// RecordLogin bumps the visit counter and stamps the login date and time.
func (u *User) RecordLogin(now time.Time) {
	u.VisitCount++
	u.LastLoginDate = now.Format(LoginDateLayout)
	u.LastLoginTime = now.Format(LoginTimeLayout)
}
