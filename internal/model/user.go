package model

import (
	"time"

	"huronportal/internal/auth"
)

// User is a portal account. Username and email are stored lowercased.
type User struct {
	Base
	Username       string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email          string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Name           string     `gorm:"type:varchar(100);not null" json:"name"`
	PasswordDigest string     `gorm:"type:varchar(255);not null" json:"-"`
	Role           auth.Role  `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive       bool       `gorm:"not null" json:"isActive"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
}
