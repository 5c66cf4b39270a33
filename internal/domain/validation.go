package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field pairs a field name with its rules. Rules run in order and the
// first violation supplies the field's message.
type Field struct {
	Name  string
	Rules []Rule
}

// Rule is a single evaluated constraint.
type Rule struct {
	OK      bool
	Message string
}

// Validate runs a declarative schema and returns nil when every field
// passes, or a ValidationError mapping field names to their first
// violated rule's message.
func Validate(fields ...Field) *ValidationError {
	var errs map[string]string
	for _, field := range fields {
		for _, rule := range field.Rules {
			if rule.OK {
				continue
			}
			if errs == nil {
				errs = make(map[string]string)
			}
			errs[field.Name] = rule.Message
			break
		}
	}
	if errs == nil {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// Required fails on empty or all-whitespace strings.
func Required(value string) Rule {
	return Rule{OK: strings.TrimSpace(value) != "", Message: "required"}
}

// MaxLen bounds a string's length in runes.
func MaxLen(value string, limit int) Rule {
	return Rule{
		OK:      len([]rune(value)) <= limit,
		Message: fmt.Sprintf("must be %d characters or fewer", limit),
	}
}

// RequiredName combines presence on update-style inputs: a nil pointer
// passes (field omitted), a supplied value must be non-empty.
func RequiredName(value *string) Rule {
	if value == nil {
		return Rule{OK: true}
	}
	return Required(*value)
}

// MaxLenOpt bounds an optional string; nil passes.
func MaxLenOpt(value *string, limit int) Rule {
	if value == nil {
		return Rule{OK: true}
	}
	return MaxLen(*value, limit)
}

// RequiredTime fails on a zero timestamp.
func RequiredTime(value time.Time) Rule {
	return Rule{OK: !value.IsZero(), Message: "required"}
}

// IntRange bounds an optional integer; nil passes.
func IntRange(value *int, min, max int) Rule {
	if value == nil {
		return Rule{OK: true}
	}
	return Rule{
		OK:      *value >= min && *value <= max,
		Message: fmt.Sprintf("must be between %d and %d", min, max),
	}
}

// DecimalRange bounds an optional decimal; nil passes.
func DecimalRange(value *float64, min, max float64) Rule {
	if value == nil {
		return Rule{OK: true}
	}
	return Rule{
		OK:      *value >= min && *value <= max,
		Message: fmt.Sprintf("must be between %g and %g", min, max),
	}
}

// ValidID requires a well-formed UUID.
func ValidID(value string) Rule {
	return Rule{OK: uuid.Validate(value) == nil, Message: "must be a valid id"}
}

// TwoDecimalPlaces rejects optional decimals carrying more than two
// fractional digits.
func TwoDecimalPlaces(value *float64) Rule {
	if value == nil {
		return Rule{OK: true}
	}
	scaled := *value * 100
	diff := scaled - float64(int64(scaled+0.5))
	if diff < 0 {
		diff = -diff
	}
	return Rule{OK: diff < 1e-6, Message: "must have at most two decimal places"}
}
