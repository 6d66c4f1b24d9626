package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemalens/schemalens/internal/infer"
)

func TestFormatName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "snake case", in: "user_id", want: "User Id"},
		{name: "camel case", in: "emailAddress", want: "Email Address"},
		{name: "hyphenated", in: "email-address", want: "Email Address"},
		{name: "single word", in: "users", want: "Users"},
		{name: "already formatted", in: "User Id", want: "User Id"},
		{name: "mixed separators", in: "created_atTimestamp", want: "Created At Timestamp"},
		{name: "upper acronym collapses", in: "APIKey", want: "Apikey"},
		{name: "dotted name keeps dot", in: "address.city", want: "Address.city"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infer.FormatName(tt.in))
		})
	}
}

func TestFormatNameIdempotent(t *testing.T) {
	inputs := []string{"user_id", "emailAddress", "order-total", "ID", "first_name last_name"}
	for _, in := range inputs {
		once := infer.FormatName(in)
		assert.Equal(t, once, infer.FormatName(once), "FormatName must be idempotent for %q", in)
	}
}
