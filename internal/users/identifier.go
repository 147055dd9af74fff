package users

import (
	"strings"

	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// NormalizeIdentifier canonicalizes a phone login identifier: separators
// are stripped and a leading + is kept.
func NormalizeIdentifier(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}

	var b strings.Builder
	digits := 0
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", pkgerrors.Newf(pkgerrors.CodeValidation, "phone number contains invalid character %q", r)
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "phone number must have between %d and %d digits", minPhoneDigits, maxPhoneDigits)
	}
	return b.String(), nil
}
