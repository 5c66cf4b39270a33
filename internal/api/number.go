package api

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a form-tolerant numeric field: it accepts a JSON number, a
// numeric string, an empty string, or null. Empty and null both mean
// "field omitted"; on updates the stored value is left untouched, never
// cleared to zero.
type Number struct {
	present bool
	raw     string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		n.present, n.raw = true, str
		return nil
	}
	n.present, n.raw = true, trimmed
	return nil
}

// Int parses the value as an integer; an omitted value yields nil.
func (n Number) Int() (*int, error) {
	if !n.present {
		return nil, nil
	}
	parsed, err := strconv.Atoi(n.raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Float parses the value as a decimal; an omitted value yields nil.
func (n Number) Float() (*float64, error) {
	if !n.present {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(n.raw, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
