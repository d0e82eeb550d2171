package enums

import "fmt"

// CheckoutMode distinguishes a cart checkout from a direct buy-now
// purchase. The mode is persisted on the order so settlement knows
// which session state to clear.
type CheckoutMode string

const (
	CheckoutModeCart   CheckoutMode = "cart"
	CheckoutModeBuyNow CheckoutMode = "buy_now"
)

var validCheckoutModes = []CheckoutMode{
	CheckoutModeCart,
	CheckoutModeBuyNow,
}

// String implements fmt.Stringer.
func (c CheckoutMode) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutMode.
func (c CheckoutMode) IsValid() bool {
	for _, candidate := range validCheckoutModes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutMode converts raw input into a CheckoutMode.
func ParseCheckoutMode(value string) (CheckoutMode, error) {
	for _, candidate := range validCheckoutModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout mode %q", value)
}
