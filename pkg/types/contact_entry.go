package types

import "time"

// ContactEntry is one append-only row in an order's contact history.
type ContactEntry struct {
	ContactDate time.Time `json:"contactDate"`
	Method      string    `json:"method"`
	Notes       string    `json:"notes"`
	AdminUser   string    `json:"adminUser"`
}
