package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

// Video is a long-form video record carrying multiple cover images.
type Video struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string             `gorm:"column:title;not null" json:"title"`
	Description string             `gorm:"column:description;not null;default:''" json:"description"`
	Category    string             `gorm:"column:category;not null;default:''" json:"category"`
	Price       float64            `gorm:"column:price;not null;default:0" json:"price"`
	Discount    float64            `gorm:"column:discount;not null;default:0" json:"discount"`
	Sizes       []string           `gorm:"column:sizes;type:jsonb;serializer:json" json:"sizes"`
	Covers      []types.CoverAsset `gorm:"column:covers;type:jsonb;serializer:json" json:"covers"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
