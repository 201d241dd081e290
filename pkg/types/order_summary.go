package types

// OrderSummary is the caller-computed totals block. The server trusts it
// as-is; it is never recomputed from the items.
type OrderSummary struct {
	Subtotal       float64 `json:"subtotal" validate:"required"`
	ShippingFee    float64 `json:"shippingFee"`
	DiscountAmount float64 `json:"discountAmount"`
	PromoCode      string  `json:"promoCode,omitempty"`
	TotalAmount    float64 `json:"totalAmount" validate:"required"`
	ItemsCount     int     `json:"itemsCount" validate:"required,gt=0"`
}
