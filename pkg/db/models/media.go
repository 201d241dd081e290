package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

// Media is a titled record with a single cover image hosted on the
// object store. Only the metadata lives here.
type Media struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title     string           `gorm:"column:title;not null" json:"title"`
	Cover     types.CoverAsset `gorm:"column:cover;type:jsonb;serializer:json" json:"cover"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
