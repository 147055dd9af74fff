package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db/models"
)

// FromModel converts a persisted product into the catalog schema.
func FromModel(m *models.Product) catalog.Product {
	if m == nil {
		return catalog.Product{}
	}
	out := catalog.Product{
		ID:             m.ID,
		Name:           m.Name,
		Category:       m.Category,
		RetailPrice:    m.RetailPrice,
		WholesalePrice: m.WholesalePrice,
		MOQ:            m.MOQ,
		Sizes:          append(catalog.SizeList(nil), m.Sizes...),
		Stock:          m.Stock,
		Images:         append([]string(nil), m.Images...),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Tag != nil {
		tag := *m.Tag
		out.Tag = &tag
	}
	return out
}

func applyInput(m *models.Product, in catalog.ProductInput, now time.Time) {
	m.Name = in.Name
	m.Category = in.Category
	m.RetailPrice = in.RetailPrice
	m.WholesalePrice = in.WholesalePrice
	m.MOQ = in.MOQ
	m.Sizes = pq.Float64Array(append([]float64(nil), in.Sizes...))
	m.Stock = in.Stock
	m.Images = pq.StringArray(append([]string(nil), in.Images...))
	m.Tag = in.Tag
	m.UpdatedAt = now
}

func newModel(in catalog.ProductInput, now time.Time) *models.Product {
	m := &models.Product{ID: uuid.New(), CreatedAt: now}
	applyInput(m, in, now)
	return m
}
