package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// User is the application profile linked to an identity provider account.
type User struct {
	ID          string   `json:"id" gorm:"primaryKey;size:36"`
	ProviderUID string   `json:"provider_uid" gorm:"uniqueIndex;not null;size:255"`
	Name        string   `json:"name" gorm:"not null;size:100"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role        UserRole `json:"role" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsTeacher() bool {
	return u != nil && u.Role == RoleTeacher
}

// Identity is what a verified bearer token says about its holder. It exists
// before, and independently of, the application profile.
type Identity struct {
	UID   string   `json:"uid"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role,omitempty"`
}
