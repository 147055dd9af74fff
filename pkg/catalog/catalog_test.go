package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestParseSizesRoundTrip(t *testing.T) {
	sizes, err := ParseSizes("6,7,8,9,10")
	require.NoError(t, err)
	assert.Equal(t, SizeList{6, 7, 8, 9, 10}, sizes)

	formatted := FormatSizes(sizes)
	assert.Equal(t, "6, 7, 8, 9, 10", formatted)

	again, err := ParseSizes(formatted)
	require.NoError(t, err)
	assert.Equal(t, sizes, again)
}

func TestParseSizesDelimitersAndHalfSizes(t *testing.T) {
	sizes, err := ParseSizes(" 6, 7.5;8  9.0\n10 ")
	require.NoError(t, err)
	assert.Equal(t, SizeList{6, 7.5, 8, 9, 10}, sizes)
	assert.Equal(t, "6, 7.5, 8, 9, 10", sizes.String())
	assert.Equal(t, []Size{"6", "7.5", "8", "9", "10"}, sizes.Keys())
}

func TestParseSizesRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", " , ", "6,seven", "6,-1", "6,0", "6,6", "6,6.0"} {
		_, err := ParseSizes(raw)
		assert.Error(t, err, "ParseSizes(%q)", raw)
	}
}

func TestSizeListUnmarshalJSON(t *testing.T) {
	var fromArray struct {
		Sizes SizeList `json:"sizes"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"sizes":[6,7.5,8]}`), &fromArray))
	assert.Equal(t, SizeList{6, 7.5, 8}, fromArray.Sizes)

	var fromString struct {
		Sizes SizeList `json:"sizes"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"sizes":"6, 7,8"}`), &fromString))
	assert.Equal(t, SizeList{6, 7, 8}, fromString.Sizes)

	var bad struct {
		Sizes SizeList `json:"sizes"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"sizes":{"a":1}}`), &bad))
}

func TestSizeListValidateAndContains(t *testing.T) {
	assert.Error(t, SizeList{}.Validate())
	assert.Error(t, SizeList{6, 6}.Validate())
	assert.Error(t, SizeList{6, -2}.Validate())
	assert.NoError(t, SizeList{6, 7.5}.Validate())

	assert.True(t, SizeList{6, 7.5}.Contains("7.5"))
	assert.False(t, SizeList{6, 7.5}.Contains("7"))
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize(" 8.0 ")
	require.NoError(t, err)
	assert.Equal(t, Size("8"), s)

	_, err = ParseSize("big")
	assert.Error(t, err)
}

func TestSizeQuantitiesHelpers(t *testing.T) {
	q := SizeQuantities{"6": 10, "7": 0, "10": 4, "8": -1}
	assert.Equal(t, SizeQuantities{"6": 10, "10": 4}, q.NonZero())
	assert.Equal(t, []Size{"6", "7", "8", "10"}, q.Sorted())

	clone := q.Clone()
	clone["6"] = 99
	assert.Equal(t, 10, q["6"])
	assert.Nil(t, SizeQuantities(nil).Clone())
}

func TestSizeQuantitiesScanValue(t *testing.T) {
	q := SizeQuantities{"6": 10, "8": 14}
	v, err := q.Value()
	require.NoError(t, err)

	var fromString SizeQuantities
	require.NoError(t, fromString.Scan(v))
	assert.Equal(t, q, fromString)

	var fromBytes SizeQuantities
	require.NoError(t, fromBytes.Scan([]byte(`{"7.5":3}`)))
	assert.Equal(t, SizeQuantities{"7.5": 3}, fromBytes)

	var fromNil SizeQuantities
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil)

	assert.Error(t, fromNil.Scan(42))
}

func TestProductUnitPriceAndClone(t *testing.T) {
	tag := "new"
	p := Product{
		Name:           "Trail Runner",
		RetailPrice:    decimal.RequireFromString("1499"),
		WholesalePrice: decimal.RequireFromString("899.50"),
		Sizes:          SizeList{6, 7},
		Images:         []string{"https://img.example.com/a.jpg"},
		Tag:            &tag,
	}
	assert.True(t, p.UnitPrice(enums.ModeRetail).Equal(decimal.RequireFromString("1499")))
	assert.True(t, p.UnitPrice(enums.ModeWholesale).Equal(decimal.RequireFromString("899.5")))

	clone := p.Clone()
	clone.Sizes[0] = 11
	clone.Images[0] = "changed"
	*clone.Tag = "sale"
	assert.Equal(t, 6.0, p.Sizes[0])
	assert.Equal(t, "https://img.example.com/a.jpg", p.Images[0])
	assert.Equal(t, "new", *p.Tag)
}

func TestProductInputNormalize(t *testing.T) {
	blank := "  "
	in := ProductInput{
		Name:     "  Loafer ",
		Category: " formal",
		Images:   []string{" https://img.example.com/a.jpg ", "", "  "},
		Tag:      &blank,
	}
	out := in.Normalize()
	assert.Equal(t, "Loafer", out.Name)
	assert.Equal(t, "formal", out.Category)
	assert.Equal(t, []string{"https://img.example.com/a.jpg"}, out.Images)
	assert.Nil(t, out.Tag)
}

func TestEncodeImage(t *testing.T) {
	ref, err := EncodeImage(pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes), ref)
	assert.NoError(t, ValidateImageRef(ref))

	_, err = EncodeImage(nil)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = EncodeImage([]byte("just some text, not a picture"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestValidateImageRef(t *testing.T) {
	assert.NoError(t, ValidateImageRef("https://cdn.example.com/shoe.jpg"))
	assert.NoError(t, ValidateImageRef("http://cdn.example.com/shoe.jpg"))

	assert.ErrorIs(t, ValidateImageRef(""), ErrNoImage)
	assert.ErrorIs(t, ValidateImageRef("ftp://cdn.example.com/shoe.jpg"), ErrBadImageSource)
	assert.ErrorIs(t, ValidateImageRef("/relative/shoe.jpg"), ErrBadImageSource)
	assert.ErrorIs(t, ValidateImageRef("data:image/png,notbase64"), ErrBadImageSource)

	textPayload := base64.StdEncoding.EncodeToString([]byte("plain text"))
	err := ValidateImageRef("data:image/png;base64," + textPayload)
	assert.True(t, errors.Is(err, ErrNotAnImage), "payload must sniff as an image, got %v", err)

	err = ValidateImageRef("data:text/plain;base64," + textPayload)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestValidateImages(t *testing.T) {
	assert.ErrorIs(t, ValidateImages(nil), ErrNoImage)
	assert.NoError(t, ValidateImages([]string{"https://cdn.example.com/a.jpg"}))
	assert.ErrorIs(t, ValidateImages([]string{"https://cdn.example.com/a.jpg", "nope"}), ErrBadImageSource)
}
