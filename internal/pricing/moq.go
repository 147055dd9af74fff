package pricing

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

// MinimumInput describes one wholesale batch checked against its product MOQ.
type MinimumInput struct {
	ProductID   uuid.UUID
	ProductName string
	MOQ         int
	Pairs       int
}

// MinimumViolation is returned in error details for each failing batch.
type MinimumViolation struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name,omitempty"`
	RequiredPairs  int       `json:"required_pairs"`
	RequestedPairs int       `json:"requested_pairs"`
}

// MinimumNotMet builds the user-facing rejection for a single batch.
func MinimumNotMet(productName string, moq, pairs int) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict,
		"minimum order for %s is %d pairs, you entered %d", productName, moq, pairs,
	).WithDetails(map[string]any{
		"required_pairs":  moq,
		"requested_pairs": pairs,
	})
}

// ValidateMinimums checks every batch and reports all violations at once.
func ValidateMinimums(items []MinimumInput) error {
	var violations []MinimumViolation
	for _, item := range items {
		if MeetsMinimum(item.Pairs, item.MOQ) {
			continue
		}
		violations = append(violations, MinimumViolation{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			RequiredPairs:  item.MOQ,
			RequestedPairs: item.Pairs,
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("minimum order quantity not met for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
