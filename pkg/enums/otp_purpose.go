package enums

import "fmt"

// OtpPurpose namespaces one-time codes so a registration code can never
// validate a password reset and vice versa.
type OtpPurpose string

const (
	OtpPurposeRegister OtpPurpose = "register"
	OtpPurposeReset    OtpPurpose = "reset"
)

var validOtpPurposes = []OtpPurpose{
	OtpPurposeRegister,
	OtpPurposeReset,
}

// String implements fmt.Stringer.
func (p OtpPurpose) String() string {
	return string(p)
}

// IsValid reports whether the value is a known OtpPurpose.
func (p OtpPurpose) IsValid() bool {
	for _, candidate := range validOtpPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseOtpPurpose converts raw input into an OtpPurpose.
func ParseOtpPurpose(value string) (OtpPurpose, error) {
	for _, candidate := range validOtpPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid otp purpose %q", value)
}
