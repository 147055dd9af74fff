package storefront

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

func TestFormRoundTripsProduct(t *testing.T) {
	tag := "new"
	product := trailRunner()
	product.Tag = &tag

	form := FormFromProduct(product)
	assert.Equal(t, "6, 7, 8, 9, 10", form.Sizes)
	assert.Equal(t, "new", form.Tag)

	input, err := form.Input()
	require.NoError(t, err)
	assert.Equal(t, product.Sizes, input.Sizes)
	assert.Equal(t, product.Images, input.Images)
	require.NotNil(t, input.Tag)
	assert.Equal(t, "new", *input.Tag)
}

func TestFormCollectsProblems(t *testing.T) {
	_, err := ProductForm{
		Category:    "formal",
		RetailPrice: decimal.RequireFromString("-1"),
		Sizes:       "7,x",
	}.Input()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details := typed.Details().(map[string]any)
	messages := details["errors"].([]string)
	assert.Len(t, messages, 4)
	assert.Equal(t, "name is required", typed.Message())
	assert.Equal(t, catalog.ErrNoImage.Error(), messages[3])
}

func TestFormRequiresAnImage(t *testing.T) {
	_, err := ProductForm{Name: "Loafer", Category: "formal", Sizes: "7"}.Input()
	require.Error(t, err)
	assert.Equal(t, "no image attached", pkgerrors.As(err).Message())

	_, err = ProductForm{Name: "Loafer", Category: "formal", Sizes: "7", Uploads: [][]byte{[]byte("plain text")}}.Input()
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Message(), "upload 1")
}
