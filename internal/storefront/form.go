package storefront

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

// ProductForm is the admin create/edit form. Sizes is the delimited text the
// admin typed; Uploads are raw image files encoded to data URLs on submit.
type ProductForm struct {
	Name           string
	Category       string
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
	MOQ            int
	Sizes          string
	Stock          int
	Uploads        [][]byte
	ImageURLs      []string
	Tag            string
}

// FormFromProduct pre-fills an edit form. Existing images, uploaded or not,
// are carried as references.
func FormFromProduct(p catalog.Product) ProductForm {
	form := ProductForm{
		Name:           p.Name,
		Category:       p.Category,
		RetailPrice:    p.RetailPrice,
		WholesalePrice: p.WholesalePrice,
		MOQ:            p.MOQ,
		Sizes:          catalog.FormatSizes(p.Sizes),
		Stock:          p.Stock,
		ImageURLs:      append([]string(nil), p.Images...),
	}
	if p.Tag != nil {
		form.Tag = *p.Tag
	}
	return form
}

// Input parses and validates the form into the API payload. Every problem is
// reported in one validation error.
func (f ProductForm) Input() (catalog.ProductInput, error) {
	var errs error
	if strings.TrimSpace(f.Name) == "" {
		errs = multierr.Append(errs, fmt.Errorf("name is required"))
	}
	if strings.TrimSpace(f.Category) == "" {
		errs = multierr.Append(errs, fmt.Errorf("category is required"))
	}
	if f.RetailPrice.IsNegative() || f.WholesalePrice.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("prices must not be negative"))
	}
	if f.MOQ < 0 {
		errs = multierr.Append(errs, fmt.Errorf("moq must not be negative"))
	}
	if f.Stock < 0 {
		errs = multierr.Append(errs, fmt.Errorf("stock must not be negative"))
	}

	sizes, err := catalog.ParseSizes(f.Sizes)
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	images := make([]string, 0, len(f.Uploads)+len(f.ImageURLs))
	for i, upload := range f.Uploads {
		ref, err := catalog.EncodeImage(upload)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("upload %d: %w", i+1, err))
			continue
		}
		images = append(images, ref)
	}
	for _, ref := range f.ImageURLs {
		if trimmed := strings.TrimSpace(ref); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	if len(images) == 0 {
		errs = multierr.Append(errs, catalog.ErrNoImage)
	} else if errs == nil {
		if err := catalog.ValidateImages(images); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if errs != nil {
		problems := multierr.Errors(errs)
		messages := make([]string, 0, len(problems))
		for _, p := range problems {
			messages = append(messages, p.Error())
		}
		return catalog.ProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, messages[0]).
			WithDetails(map[string]any{"errors": messages})
	}

	input := catalog.ProductInput{
		Name:           f.Name,
		Category:       f.Category,
		RetailPrice:    f.RetailPrice,
		WholesalePrice: f.WholesalePrice,
		MOQ:            f.MOQ,
		Sizes:          sizes,
		Stock:          f.Stock,
		Images:         images,
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		input.Tag = &tag
	}
	return input.Normalize(), nil
}
