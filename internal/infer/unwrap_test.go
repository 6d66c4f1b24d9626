package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/format"
	"github.com/schemalens/schemalens/internal/infer"
)

func decode(t *testing.T, src string) domain.Value {
	t.Helper()
	v, err := format.DecodeJSON([]byte(src))
	require.NoError(t, err)
	return v
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantRecords int
		wantIsList  bool
		wantOK      bool
	}{
		{
			name:        "bare array",
			in:          `[{"id":1},{"id":2}]`,
			wantRecords: 2,
			wantIsList:  true,
			wantOK:      true,
		},
		{
			name:        "empty array is still a list",
			in:          `[]`,
			wantRecords: 0,
			wantIsList:  true,
			wantOK:      true,
		},
		{
			name:        "data envelope",
			in:          `{"data":[{"id":1}],"total":1}`,
			wantRecords: 1,
			wantIsList:  true,
			wantOK:      true,
		},
		{
			name:        "results envelope case-insensitive",
			in:          `{"Results":[{"id":1},{"id":2},{"id":3}]}`,
			wantRecords: 3,
			wantIsList:  true,
			wantOK:      true,
		},
		{
			name:        "two level envelope",
			in:          `{"response":{"users":[{"id":1}]}}`,
			wantRecords: 1,
			wantIsList:  true,
			wantOK:      true,
		},
		{
			name:        "single key wrapper",
			in:          `{"Customers":[{"id":1},{"id":2}]}`,
			wantRecords: 2,
			wantIsList:  true,
			wantOK:      true,
		},
		{
			name:        "plain object is a single record",
			in:          `{"id":1,"name":"Ada"}`,
			wantRecords: 1,
			wantIsList:  false,
			wantOK:      true,
		},
		{
			name:   "bare scalar has no shape",
			in:     `42`,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, isList, ok := infer.Unwrap(decode(t, tt.in))
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantIsList, isList)
			assert.Len(t, records, tt.wantRecords)
		})
	}
}

func TestUnwrapPriorityOrderIsStable(t *testing.T) {
	// Both "data" and "items" are present; "data" is earlier in the
	// allow-list and must win on every call.
	v := decode(t, `{"items":[{"a":1}],"data":[{"b":1},{"b":2}]}`)
	for i := 0; i < 10; i++ {
		records, isList, ok := infer.Unwrap(v)
		assert.True(t, ok)
		assert.True(t, isList)
		assert.Len(t, records, 2)
	}
}

func TestRecordObjects(t *testing.T) {
	records, _, ok := infer.Unwrap(decode(t, `[{"id":1},"stray",3,{"id":2}]`))
	assert.True(t, ok)
	assert.Len(t, infer.RecordObjects(records), 2)
}
