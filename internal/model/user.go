package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles known to the authorization policy
const (
	RoleRequester   = "requester"
	RoleDeptHead    = "dept_head"
	RoleProcurement = "procurement"
	RoleAdmin       = "admin"
)

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleRequester, RoleDeptHead, RoleProcurement, RoleAdmin:
		return true
	}
	return false
}

// User is the internal account record. It carries the password hash and must
// never be serialized directly; handlers respond with service.UserResponse.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'requester';index"`
	Department   string    `gorm:"type:varchar(255);not null;default:''"`
	Active       bool      `gorm:"not null;default:true;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
