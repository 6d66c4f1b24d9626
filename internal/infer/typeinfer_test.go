package infer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/infer"
)

func TestTypeFromValue(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Value
		want domain.FieldType
	}{
		{name: "boolean", in: domain.BoolValue(true), want: domain.FieldBoolean},
		{name: "number", in: domain.NumberValue(42.5), want: domain.FieldNumber},
		{name: "email", in: domain.StringValue("alice@example.com"), want: domain.FieldEmail},
		{name: "date only", in: domain.StringValue("2024-03-15"), want: domain.FieldDate},
		{name: "date time", in: domain.StringValue("2024-03-15T10:30:00Z"), want: domain.FieldDate},
		{name: "date time with offset", in: domain.StringValue("2024-03-15 10:30:00+02:00"), want: domain.FieldDate},
		{name: "short string", in: domain.StringValue("hello"), want: domain.FieldString},
		{name: "long text", in: domain.StringValue(strings.Repeat("a", 101)), want: domain.FieldText},
		{name: "exactly at threshold stays string", in: domain.StringValue(strings.Repeat("a", 100)), want: domain.FieldString},
		{name: "null", in: domain.Null(), want: domain.FieldString},
		{name: "array", in: domain.ArrayValue(), want: domain.FieldString},
		{name: "object", in: domain.ObjectValue(), want: domain.FieldString},
		{name: "numeric string stays string", in: domain.StringValue("12345"), want: domain.FieldString},
		{name: "not quite an email", in: domain.StringValue("alice@localhost"), want: domain.FieldString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infer.TypeFromValue(tt.in))
		})
	}
}

func TestTypeFromSamples(t *testing.T) {
	tests := []struct {
		name    string
		samples []domain.Value
		want    domain.FieldType
	}{
		{
			name:    "uniform numbers",
			samples: []domain.Value{domain.NumberValue(1), domain.NumberValue(2)},
			want:    domain.FieldNumber,
		},
		{
			name:    "nulls are skipped",
			samples: []domain.Value{domain.Null(), domain.NumberValue(3)},
			want:    domain.FieldNumber,
		},
		{
			name:    "conflict resolves to more flexible",
			samples: []domain.Value{domain.NumberValue(1), domain.StringValue("n/a")},
			want:    domain.FieldString,
		},
		{
			name:    "email beats date",
			samples: []domain.Value{domain.StringValue("2024-01-01"), domain.StringValue("a@b.co")},
			want:    domain.FieldEmail,
		},
		{
			name:    "all null defaults to string",
			samples: []domain.Value{domain.Null(), domain.Null()},
			want:    domain.FieldString,
		},
		{
			name:    "empty defaults to string",
			samples: nil,
			want:    domain.FieldString,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infer.TypeFromSamples(tt.samples))
		})
	}
}

func TestTypeFromDeclared(t *testing.T) {
	tests := []struct {
		name      string
		typ       string
		format    string
		maxLength int
		want      domain.FieldType
	}{
		{name: "integer", typ: "integer", want: domain.FieldNumber},
		{name: "number", typ: "number", want: domain.FieldNumber},
		{name: "boolean", typ: "boolean", want: domain.FieldBoolean},
		{name: "string date format", typ: "string", format: "date", want: domain.FieldDate},
		{name: "string date-time format", typ: "string", format: "date-time", want: domain.FieldDate},
		{name: "string email format", typ: "string", format: "email", want: domain.FieldEmail},
		{name: "long string becomes text", typ: "string", maxLength: 500, want: domain.FieldText},
		{name: "plain string", typ: "string", want: domain.FieldString},
		{name: "unknown type", typ: "binary", want: domain.FieldString},
		{name: "object degrades to string", typ: "object", want: domain.FieldString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infer.TypeFromDeclared(tt.typ, tt.format, tt.maxLength))
		})
	}
}
