package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role drives authorization decisions. Exhaustive set; no free-form values.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Bio       string `gorm:"type:text" json:"bio"`
	Role      Role   `gorm:"size:16;default:'user';not null" json:"role"`

	// Single-use secret for the signup handshake. Never serialized.
	ConfirmationCode string `gorm:"size:16" json:"-"`

	IsStaff   bool      `gorm:"default:false;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

// IsAdmin reports whether the user has full content-management rights.
// Staff users count as admins regardless of role.
func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin || user.IsStaff
}

// IsModerator reports whether the user holds the review-moderation role.
func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}

func (User) TableName() string {
	return "users"
}
