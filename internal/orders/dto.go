package orders

import (
	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
	"github.com/selimbouaziz/ateliera-backend/pkg/pagination"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

// CreateOrderInput carries a storefront checkout payload. Totals arrive
// caller-computed and are stored as-is.
type CreateOrderInput struct {
	OrderReference string             `json:"orderReference" validate:"required"`
	CustomerInfo   types.CustomerInfo `json:"customerInfo" validate:"required"`
	OrderItems     []types.OrderItem  `json:"orderItems" validate:"required,min=1,dive"`
	OrderSummary   types.OrderSummary `json:"orderSummary" validate:"required"`
	OrderStatus    string             `json:"orderStatus,omitempty"`
	OrderType      string             `json:"orderType,omitempty"`
}

// UpdateStatusInput carries an admin status/notes change. Both fields are
// optional; an empty update is a no-op save.
type UpdateStatusInput struct {
	OrderStatus string  `json:"orderStatus,omitempty"`
	AdminNotes  *string `json:"adminNotes,omitempty"`
}

// AddContactInput records one admin outreach attempt.
type AddContactInput struct {
	Method string `json:"method,omitempty"`
	Notes  string `json:"notes" validate:"required"`
}

// OrderList is a page of orders plus its pagination block.
type OrderList struct {
	Orders     []models.Order  `json:"orders"`
	Pagination pagination.Page `json:"pagination"`
}

// StatusList is the full set of orders in one status.
type StatusList struct {
	Orders []models.Order    `json:"orders"`
	Status enums.OrderStatus `json:"status"`
	Count  int               `json:"count"`
}

// DashboardStats aggregates order counts and revenue for the admin view.
type DashboardStats struct {
	TotalOrders          int64          `json:"totalOrders"`
	PendingContactOrders int64          `json:"pendingContactOrders"`
	ConfirmedOrders      int64          `json:"confirmedOrders"`
	ShippedOrders        int64          `json:"shippedOrders"`
	TotalRevenue         float64        `json:"totalRevenue"`
	RecentOrders         []models.Order `json:"recentOrders"`
}

// OrderCreatedEvent is published after a successful order write.
type OrderCreatedEvent struct {
	OrderID        string  `json:"order_id"`
	OrderReference string  `json:"order_reference"`
	CustomerName   string  `json:"customer_name"`
	CustomerEmail  string  `json:"customer_email"`
	TotalAmount    float64 `json:"total_amount"`
	ItemsCount     int     `json:"items_count"`
	OrderType      string  `json:"order_type"`
}
