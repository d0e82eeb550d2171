package enums

import "fmt"

// SignupProvider records how an account was created.
type SignupProvider string

const (
	SignupProviderManual SignupProvider = "manual"
	SignupProviderGoogle SignupProvider = "google"
)

var validSignupProviders = []SignupProvider{
	SignupProviderManual,
	SignupProviderGoogle,
}

// String implements fmt.Stringer.
func (s SignupProvider) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SignupProvider.
func (s SignupProvider) IsValid() bool {
	for _, candidate := range validSignupProviders {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSignupProvider converts raw input into a SignupProvider.
func ParseSignupProvider(value string) (SignupProvider, error) {
	for _, candidate := range validSignupProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid signup provider %q", value)
}
