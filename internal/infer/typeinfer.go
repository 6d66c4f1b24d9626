// Package infer holds the shared normalization heuristics: field-type
// inference, primary-key detection, response unwrapping, operation mapping
// and display-name formatting. Everything here is pure and deterministic;
// the same input always produces the same output.
package infer

import (
	"regexp"
	"strings"

	"github.com/schemalens/schemalens/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// ISO-8601 date or date-time, with optional fractional seconds and zone.
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)
)

const longTextThreshold = 100

// flexibility ranks the six field types for conflict resolution across
// multiple samples. A more flexible type can hold every value of a less
// flexible one.
var flexibility = map[domain.FieldType]int{
	domain.FieldText:    60,
	domain.FieldString:  50,
	domain.FieldEmail:   40,
	domain.FieldDate:    30,
	domain.FieldNumber:  20,
	domain.FieldBoolean: 10,
}

// TypeFromValue infers a field type from one sample value. It is total:
// every value maps to exactly one of the six types, with string as the
// catch-all for nulls, containers and unrecognized strings.
func TypeFromValue(v domain.Value) domain.FieldType {
	switch v.Kind {
	case domain.KindBool:
		return domain.FieldBoolean
	case domain.KindNumber:
		return domain.FieldNumber
	case domain.KindString:
		s := v.Str
		if emailPattern.MatchString(s) {
			return domain.FieldEmail
		}
		if datePattern.MatchString(s) {
			return domain.FieldDate
		}
		if len(s) > longTextThreshold {
			return domain.FieldText
		}
		return domain.FieldString
	default:
		// Null, arrays and objects carry no scalar type information.
		return domain.FieldString
	}
}

// TypeFromSamples infers a type from several observed values of one field.
// Nulls are skipped; conflicting observations resolve to the most flexible
// type so no sample is unrepresentable.
func TypeFromSamples(samples []domain.Value) domain.FieldType {
	best := domain.FieldType("")
	for _, s := range samples {
		if s.IsNull() {
			continue
		}
		t := TypeFromValue(s)
		if best == "" || flexibility[t] > flexibility[best] {
			best = t
		}
	}
	if best == "" {
		return domain.FieldString
	}
	return best
}

// TypeFromDeclared maps an OpenAPI or XSD style type declaration onto the
// closed type set. maxLength <= 0 means no length hint.
func TypeFromDeclared(typ, formatHint string, maxLength int) domain.FieldType {
	switch strings.ToLower(typ) {
	case "integer", "number":
		return domain.FieldNumber
	case "boolean":
		return domain.FieldBoolean
	case "string":
		switch strings.ToLower(formatHint) {
		case "date", "date-time", "datetime":
			return domain.FieldDate
		case "email":
			return domain.FieldEmail
		}
		if maxLength > longTextThreshold {
			return domain.FieldText
		}
		return domain.FieldString
	default:
		return domain.FieldString
	}
}
