package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role of a portal account
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleTenant UserRole = "tenant"
)

// User represents a portal login account. Admins manage properties and
// tenants; tenant accounts are matched to a Tenant record by email.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string   `gorm:"type:varchar(255)" json:"name"`
	Email       string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	FirebaseUID string   `gorm:"type:varchar(128);index" json:"firebase_uid"`
	Role        UserRole `gorm:"type:varchar(20);default:'tenant'" json:"role"`
}
