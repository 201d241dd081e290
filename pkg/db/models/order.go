package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

// Order is the storefront order document. The nested customer, items,
// summary, and contact blocks are stored as jsonb; TotalAmount and
// ItemsCount are denormalized from the summary for dashboard aggregation.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderReference string               `gorm:"column:order_reference;not null;uniqueIndex" json:"orderReference"`
	CustomerInfo   types.CustomerInfo   `gorm:"column:customer_info;type:jsonb;serializer:json" json:"customerInfo"`
	OrderItems     []types.OrderItem    `gorm:"column:order_items;type:jsonb;serializer:json" json:"orderItems"`
	OrderSummary   types.OrderSummary   `gorm:"column:order_summary;type:jsonb;serializer:json" json:"orderSummary"`
	TotalAmount    float64              `gorm:"column:total_amount;not null;default:0" json:"-"`
	ItemsCount     int                  `gorm:"column:items_count;not null;default:0" json:"-"`
	OrderStatus    enums.OrderStatus    `gorm:"column:order_status;not null;default:pending_contact" json:"orderStatus"`
	OrderType      enums.OrderType      `gorm:"column:order_type;not null;default:manual_payment" json:"orderType"`
	AdminNotes     string               `gorm:"column:admin_notes;not null;default:''" json:"adminNotes"`
	ContactHistory []types.ContactEntry `gorm:"column:contact_history;type:jsonb;serializer:json" json:"contactHistory"`
	PaymentID      *string              `gorm:"column:payment_id" json:"paymentId,omitempty"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
