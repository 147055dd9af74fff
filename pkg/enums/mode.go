package enums

import (
	"fmt"
	"strings"
)

// Mode is the storefront pricing toggle. Retail prices are tax free; wholesale
// prices apply per pair and attract GST.
type Mode string

const (
	ModeRetail    Mode = "retail"
	ModeWholesale Mode = "wholesale"
)

var validModes = []Mode{
	ModeRetail,
	ModeWholesale,
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known Mode.
func (m Mode) IsValid() bool {
	for _, candidate := range validModes {
		if candidate == m {
			return true
		}
	}
	return false
}

func (m Mode) IsWholesale() bool {
	return m == ModeWholesale
}

// ParseMode converts raw input into a Mode. Matching ignores case and
// surrounding whitespace.
func ParseMode(value string) (Mode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validModes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q", value)
}
