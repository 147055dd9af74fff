package orders

import (
	"github.com/angelmondragon/shoefinderz-backend/pkg/db/models"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// FromModel converts a persisted order and its line items.
func FromModel(m *models.Order) *types.Order {
	if m == nil {
		return nil
	}
	out := &types.Order{
		ID:     m.ID,
		UserID: m.UserID,
		Customer: types.ShippingDetails{
			Name:    m.CustomerName,
			Contact: m.CustomerContact,
			Address: m.CustomerAddress,
		},
		Items:     make([]types.OrderLine, 0, len(m.LineItems)),
		Mode:      m.Mode,
		Status:    m.Status,
		TaxPolicy: m.TaxPolicy,
		Subtotal:  m.Subtotal,
		Tax:       m.Tax,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
	}
	for _, item := range m.LineItems {
		line := types.OrderLine{
			Name:      item.Name,
			Category:  item.Category,
			Mode:      item.Mode,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
		if item.ProductID != nil {
			line.ProductID = *item.ProductID
		}
		if len(item.Sizes) > 0 {
			line.Sizes = item.Sizes.Clone()
		}
		out.Items = append(out.Items, line)
	}
	return out
}
