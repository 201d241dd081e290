package models

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode is a percentage discount code. Codes match case-sensitively
// and are never deleted, only deactivated.
type PromoCode struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code       string     `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Discount   float64    `gorm:"column:discount;not null" json:"discount"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true" json:"isActive"`
	ExpiryDate *time.Time `gorm:"column:expiry_date" json:"expiryDate,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
