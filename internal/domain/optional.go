package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Optional is a three-state JSON field wrapper. Update payloads distinguish
// a field that is absent (leave unchanged), present-but-null, and present
// with a value; collapsing absence and null together would break the
// payment-merge semantics.
type Optional[T any] struct {
	Present bool
	Valid   bool
	Value   T
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Valid: true, Value: v}
}

// UnmarshalJSON is only invoked for keys present in the payload, so Present
// is true whenever it runs; null leaves Valid false.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON encodes the value, or null when unset.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// FlexFloat decodes a JSON number, a numeric string, null, or garbage,
// coercing anything non-numeric to 0. This mirrors the lenient
// parseFloat-or-zero behavior of the request surface: bad numeric input is
// silently masked, not rejected.
type FlexFloat float64

// UnmarshalJSON never fails; non-numeric input becomes 0.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// MarshalJSON encodes the float value.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float64 returns the coerced value.
func (f FlexFloat) Float64() float64 {
	return float64(f)
}
