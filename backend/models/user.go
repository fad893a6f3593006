package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"` // user, admin
	Group        string
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
