package enums

import "fmt"

// PreferredContact is the channel a customer asked to be reached on.
type PreferredContact string

const (
	PreferredContactEmail    PreferredContact = "email"
	PreferredContactPhone    PreferredContact = "phone"
	PreferredContactWhatsapp PreferredContact = "whatsapp"
)

var validPreferredContacts = []PreferredContact{
	PreferredContactEmail,
	PreferredContactPhone,
	PreferredContactWhatsapp,
}

// String implements fmt.Stringer.
func (p PreferredContact) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PreferredContact.
func (p PreferredContact) IsValid() bool {
	for _, candidate := range validPreferredContacts {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePreferredContact converts raw input into a PreferredContact.
func ParsePreferredContact(value string) (PreferredContact, error) {
	for _, candidate := range validPreferredContacts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid preferred contact %q", value)
}
