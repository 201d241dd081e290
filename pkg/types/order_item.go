package types

// OrderItem is one storefront line inside an order's jsonb items array.
// Prices arrive caller-computed; there is no stock or price check here.
type OrderItem struct {
	ProductID          string   `json:"productId" validate:"required"`
	Name               string   `json:"name" validate:"required"`
	Quantity           int      `json:"quantity" validate:"required,gt=0"`
	Price              float64  `json:"price" validate:"required"`
	OriginalPrice      *float64 `json:"originalPrice,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Size               string   `json:"size,omitempty"`
	Color              string   `json:"color,omitempty"`
	Image              string   `json:"image,omitempty"`
}

// ApplyDefaults fills variant fields the storefront may omit.
func (i *OrderItem) ApplyDefaults() {
	if i.Size == "" {
		i.Size = "Not specified"
	}
	if i.Color == "" {
		i.Color = "Not specified"
	}
}
