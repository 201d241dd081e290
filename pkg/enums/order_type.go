package enums

import "fmt"

// OrderType distinguishes how an order will be paid.
type OrderType string

const (
	// OrderTypeManualPayment covers cash-on-delivery and interac orders
	// settled outside the platform.
	OrderTypeManualPayment OrderType = "manual_payment"
	// OrderTypeOnlinePayment covers orders captured through the payment
	// gateway by an admin.
	OrderTypeOnlinePayment OrderType = "online_payment"
)

var validOrderTypes = []OrderType{
	OrderTypeManualPayment,
	OrderTypeOnlinePayment,
}

// String implements fmt.Stringer.
func (o OrderType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderType.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
