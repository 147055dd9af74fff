package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Size is the canonical text form of a shoe size, e.g. "7" or "7.5". It is
// the key type of SizeQuantities.
type Size string

// SizeFromFloat formats v without trailing zeros.
func SizeFromFloat(v float64) Size {
	return Size(strconv.FormatFloat(v, 'f', -1, 64))
}

// ParseSize converts user input into its canonical Size.
func ParseSize(raw string) (Size, error) {
	v, err := parseSizeValue(raw)
	if err != nil {
		return "", err
	}
	return SizeFromFloat(v), nil
}

func (s Size) String() string {
	return string(s)
}

// Float returns the numeric size.
func (s Size) Float() (float64, error) {
	return parseSizeValue(string(s))
}

func parseSizeValue(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("size is empty")
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("size %q is not a number", raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("size %q must be positive", raw)
	}
	return v, nil
}

// SizeList is an ordered sequence of sizes offered for a product. It decodes
// from either a JSON array of numbers or a delimited string such as
// "6, 7,8".
type SizeList []float64

// ParseSizes splits a comma, semicolon or whitespace delimited string into a
// SizeList, preserving order. Duplicates are rejected.
func ParseSizes(raw string) (SizeList, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one size is required")
	}
	sizes := make(SizeList, 0, len(fields))
	seen := make(map[Size]struct{}, len(fields))
	for _, field := range fields {
		v, err := parseSizeValue(field)
		if err != nil {
			return nil, err
		}
		key := SizeFromFloat(v)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("size %s listed more than once", key)
		}
		seen[key] = struct{}{}
		sizes = append(sizes, v)
	}
	return sizes, nil
}

// FormatSizes renders sizes for an edit form. ParseSizes(FormatSizes(s))
// reproduces s.
func FormatSizes(sizes SizeList) string {
	return sizes.String()
}

func (l SizeList) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = string(SizeFromFloat(v))
	}
	return strings.Join(parts, ", ")
}

// Keys returns the canonical Size for each entry.
func (l SizeList) Keys() []Size {
	keys := make([]Size, len(l))
	for i, v := range l {
		keys[i] = SizeFromFloat(v)
	}
	return keys
}

// Contains reports whether size is offered.
func (l SizeList) Contains(size Size) bool {
	for _, v := range l {
		if SizeFromFloat(v) == size {
			return true
		}
	}
	return false
}

// Validate checks that every entry is positive and unique.
func (l SizeList) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("at least one size is required")
	}
	seen := make(map[Size]struct{}, len(l))
	for _, v := range l {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("size %v must be a positive number", v)
		}
		key := SizeFromFloat(v)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("size %s listed more than once", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// UnmarshalJSON accepts an array of numbers or a delimited string.
func (l *SizeList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		parsed, err := ParseSizes(raw)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}
	var values []float64
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return fmt.Errorf("sizes must be an array of numbers or a delimited string: %w", err)
	}
	*l = values
	return nil
}

// SizeQuantities maps a size to the number of pairs requested. It is stored
// as a JSON object.
type SizeQuantities map[Size]int

// NonZero returns a copy without zero or negative entries.
func (q SizeQuantities) NonZero() SizeQuantities {
	out := make(SizeQuantities, len(q))
	for size, qty := range q {
		if qty > 0 {
			out[size] = qty
		}
	}
	return out
}

// Clone returns an independent copy.
func (q SizeQuantities) Clone() SizeQuantities {
	if q == nil {
		return nil
	}
	out := make(SizeQuantities, len(q))
	for size, qty := range q {
		out[size] = qty
	}
	return out
}

// Sorted returns the sizes in ascending numeric order.
func (q SizeQuantities) Sorted() []Size {
	keys := make([]Size, 0, len(q))
	for size := range q {
		keys = append(keys, size)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := keys[i].Float()
		b, errB := keys[j].Float()
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}

// Value implements driver.Valuer.
func (q SizeQuantities) Value() (driver.Value, error) {
	if q == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[Size]int(q))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (q *SizeQuantities) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*q = SizeQuantities{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported size quantities type %T", src)
	}
	out := SizeQuantities{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("decode size quantities: %w", err)
		}
	}
	*q = out
	return nil
}
