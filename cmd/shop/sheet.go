package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// Sheet is a bulk-order sheet. Retail lines are added in retail mode and
// matrices in wholesale mode; Mode is the mode the order is submitted under.
type Sheet struct {
	Login    *Credentials          `yaml:"login"`
	Signup   *Credentials          `yaml:"signup"`
	Category string                `yaml:"category"`
	Mode     enums.Mode            `yaml:"mode"`
	Retail   []RetailLine          `yaml:"retail"`
	Matrices []MatrixLine          `yaml:"matrices"`
	Shipping types.ShippingDetails `yaml:"shipping"`
}

type Credentials struct {
	Name       string `yaml:"name"`
	Identifier string `yaml:"identifier"`
	Password   string `yaml:"password"`
}

// RetailLine adds Quantity single pairs of Product, referenced by id or name.
type RetailLine struct {
	Product  string `yaml:"product"`
	Quantity int    `yaml:"quantity"`
}

// MatrixLine is one size matrix. Size keys may be written as numbers.
type MatrixLine struct {
	Product string         `yaml:"product"`
	Sizes   map[string]int `yaml:"sizes"`
}

// ParseSheet decodes and validates a sheet. Unknown keys are rejected.
func ParseSheet(r io.Reader) (*Sheet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sheet Sheet
	if err := dec.Decode(&sheet); err != nil {
		if err == io.EOF {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order sheet is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode order sheet")
	}
	sheet.normalize()
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (s *Sheet) normalize() {
	s.Category = strings.TrimSpace(s.Category)
	s.Mode = enums.Mode(strings.ToLower(strings.TrimSpace(string(s.Mode))))
	if s.Mode == "" {
		s.Mode = enums.ModeRetail
		if len(s.Matrices) > 0 {
			s.Mode = enums.ModeWholesale
		}
	}
	for i := range s.Retail {
		s.Retail[i].Product = strings.TrimSpace(s.Retail[i].Product)
		if s.Retail[i].Quantity == 0 {
			s.Retail[i].Quantity = 1
		}
	}
	for i := range s.Matrices {
		s.Matrices[i].Product = strings.TrimSpace(s.Matrices[i].Product)
	}
	s.Shipping = s.Shipping.Normalize()
}

// Validate reports every structural problem in one validation error.
func (s *Sheet) Validate() error {
	problems := map[string]string{}
	if s.Login != nil && s.Signup != nil {
		problems["login"] = "use either login or signup, not both"
	}
	if s.Login != nil && (s.Login.Identifier == "" || s.Login.Password == "") {
		problems["login"] = "identifier and password are required"
	}
	if s.Signup != nil && (s.Signup.Name == "" || s.Signup.Identifier == "" || s.Signup.Password == "") {
		problems["signup"] = "name, identifier and password are required"
	}
	if !s.Mode.IsValid() {
		problems["mode"] = fmt.Sprintf("unknown mode %q", s.Mode)
	}
	if len(s.Retail) == 0 && len(s.Matrices) == 0 {
		problems["lines"] = "at least one retail line or size matrix is required"
	}
	for i, line := range s.Retail {
		key := fmt.Sprintf("retail[%d]", i)
		switch {
		case line.Product == "":
			problems[key] = "product is required"
		case line.Quantity < 0:
			problems[key] = "quantity must not be negative"
		}
	}
	for i, line := range s.Matrices {
		key := fmt.Sprintf("matrices[%d]", i)
		switch {
		case line.Product == "":
			problems[key] = "product is required"
		case len(line.Sizes) == 0:
			problems[key] = "at least one size is required"
		}
	}
	if err := s.Shipping.Validate(); err != nil {
		problems["shipping"] = "name, contact and address are required"
	}
	if len(problems) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "order sheet is invalid").WithDetails(problems)
}
