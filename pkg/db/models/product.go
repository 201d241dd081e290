package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. VideoURL is set through the attach-video
// operation after the video asset exists.
type Product struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Category     string    `gorm:"column:category;not null;default:''" json:"category"`
	Availability string    `gorm:"column:availability;not null;default:''" json:"availability"`
	Price        float64   `gorm:"column:price;not null;default:0" json:"price"`
	Images       []string  `gorm:"column:images;type:jsonb;serializer:json" json:"images"`
	VideoURL     string    `gorm:"column:video_url;not null;default:''" json:"videoUrl"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
