package models

import (
	"time"

	"gorm.io/gorm"
)

// Role identifies the capability set of an account.
type Role string

// Supported account roles.
const (
	RoleStudent    Role = "student"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleAdmin:
		return true
	default:
		return false
	}
}

// UserProfile holds the display fields shown on project listings.
type UserProfile struct {
	FullName   string `gorm:"size:255;not null" json:"full_name"`
	RegNo      string `gorm:"size:64;index" json:"reg_no"`
	Program    string `gorm:"size:128" json:"program"`
	Department string `gorm:"size:128" json:"department"`
}

// User is an account of any role.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         Role           `gorm:"size:32;index;not null" json:"role"`
	Profile      UserProfile    `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
