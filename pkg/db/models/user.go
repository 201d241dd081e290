package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
)

// User is a verified account. Unverified registrations live only in
// Redis until their OTP is confirmed.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string         `gorm:"column:first_name;not null" json:"firstName"`
	LastName     string         `gorm:"column:last_name;not null" json:"lastName"`
	Role         enums.UserRole `gorm:"column:role;not null;default:customer" json:"role"`
	IsVerified   bool           `gorm:"column:is_verified;not null;default:false" json:"isVerified"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"isActive"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
