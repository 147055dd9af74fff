package types

import (
	"strings"

	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

// ShippingDetails is the customer record collected at checkout. Every field
// is required; no format checks beyond presence.
type ShippingDetails struct {
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"required,max=100"`
	Address string `json:"address" validate:"required,max=1000"`
}

// Normalize trims surrounding whitespace from every field.
func (s ShippingDetails) Normalize() ShippingDetails {
	return ShippingDetails{
		Name:    strings.TrimSpace(s.Name),
		Contact: strings.TrimSpace(s.Contact),
		Address: strings.TrimSpace(s.Address),
	}
}

// Validate reports every blank field in a single validation error.
func (s ShippingDetails) Validate() error {
	n := s.Normalize()
	missing := map[string]string{}
	if n.Name == "" {
		missing["name"] = "required"
	}
	if n.Contact == "" {
		missing["contact"] = "required"
	}
	if n.Address == "" {
		missing["address"] = "required"
	}
	if len(missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "shipping details are incomplete").WithDetails(missing)
}
