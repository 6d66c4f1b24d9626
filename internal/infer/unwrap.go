package infer

import (
	"strings"

	"github.com/schemalens/schemalens/internal/domain"
)

// wrapperKeys is the envelope allow-list, in priority order. Matching is
// case-insensitive; the first key present wins, so the same input always
// unwraps identically.
var wrapperKeys = []string{
	"data", "result", "results", "items", "value", "records", "response", "payload",
}

// Unwrap locates the record or record array inside common response
// envelopes. It returns the records, whether the payload was a list, and
// whether any analyzable shape was found at all. An empty array is still a
// list: records is empty but ok is true.
func Unwrap(v domain.Value) (records []domain.Value, isList bool, ok bool) {
	switch v.Kind {
	case domain.KindArray:
		return v.Arr, true, true
	case domain.KindObject:
		// Walk one level of allow-listed keys.
		for _, key := range wrapperKeys {
			inner, found := lookupFold(v, key)
			if !found {
				continue
			}
			if inner.Kind == domain.KindArray {
				return inner.Arr, true, true
			}
			if inner.Kind == domain.KindObject {
				if arr, found := soleArrayMember(inner); found {
					return arr, true, true
				}
			}
		}
		// A single-key wrapper like {Users: [...]} or {Data: {Users: [...]}}.
		if len(v.Obj) == 1 {
			inner := v.Obj[0].Val
			if inner.Kind == domain.KindArray {
				return inner.Arr, true, true
			}
			if inner.Kind == domain.KindObject {
				if arr, found := soleArrayMember(inner); found {
					return arr, true, true
				}
			}
		}
		// No array within two levels: the object itself is a single record.
		return []domain.Value{v}, false, true
	default:
		return nil, false, false
	}
}

// lookupFold finds the first member whose key case-insensitively equals key.
func lookupFold(v domain.Value, key string) (domain.Value, bool) {
	for _, m := range v.Obj {
		if strings.EqualFold(m.Key, key) {
			return m.Val, true
		}
	}
	return domain.Value{}, false
}

// soleArrayMember returns the array when obj contains exactly one
// array-valued key.
func soleArrayMember(obj domain.Value) ([]domain.Value, bool) {
	var arr []domain.Value
	count := 0
	for _, m := range obj.Obj {
		if m.Val.Kind == domain.KindArray {
			count++
			arr = m.Val.Arr
		}
	}
	if count == 1 {
		return arr, true
	}
	return nil, false
}

// RecordObjects filters records down to object values; primitives mixed
// into a record array carry no field structure.
func RecordObjects(records []domain.Value) []domain.Value {
	objs := make([]domain.Value, 0, len(records))
	for _, r := range records {
		if r.Kind == domain.KindObject {
			objs = append(objs, r)
		}
	}
	return objs
}
