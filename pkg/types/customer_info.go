package types

import "github.com/selimbouaziz/ateliera-backend/pkg/enums"

// CustomerInfo is the buyer block embedded on every order. It is stored
// as a jsonb document, not as relational columns.
type CustomerInfo struct {
	FirstName           string                 `json:"firstName" validate:"required"`
	LastName            string                 `json:"lastName" validate:"required"`
	Email               string                 `json:"email" validate:"required,email"`
	Phone               string                 `json:"phone" validate:"required"`
	Address             string                 `json:"address" validate:"required"`
	City                string                 `json:"city" validate:"required"`
	Province            string                 `json:"province" validate:"required"`
	PostalCode          string                 `json:"postalCode" validate:"required"`
	Country             string                 `json:"country,omitempty"`
	SpecialInstructions string                 `json:"specialInstructions"`
	PreferredContact    enums.PreferredContact `json:"preferredContact,omitempty" validate:"omitempty,oneof=email phone whatsapp"`
}

// ApplyDefaults fills the optional fields the storefront may omit.
func (c *CustomerInfo) ApplyDefaults() {
	if c.Country == "" {
		c.Country = "Canada"
	}
	if c.PreferredContact == "" {
		c.PreferredContact = enums.PreferredContactEmail
	}
}
