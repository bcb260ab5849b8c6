package valueobject

import (
	"strings"

	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/ttacon/libphonenumber"
)

// ErrInvalidPhone is returned for numbers that do not parse as a valid phone
var ErrInvalidPhone = shared.NewDomainError("INVALID_PHONE", "Invalid phone number")

// PhoneRegion is the default region for numbers written without a country code
const PhoneRegion = "BR"

// NormalizePhone validates a phone number and returns it in international
// format, e.g. "+55 11 98765-4321". An empty input yields an empty result.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	number, err := libphonenumber.Parse(raw, PhoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(number) {
		return "", ErrInvalidPhone
	}
	return libphonenumber.Format(number, libphonenumber.INTERNATIONAL), nil
}
