package domain

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a closed representation of an arbitrary JSON or YAML tree.
// Consumers switch on Kind instead of probing an interface{} with type
// assertions. Object members keep document order so that unwrapping and
// field extraction are deterministic.
type Value struct {
	Kind ValueKind
	Bool bool
	Num  float64
	Str  string
	Arr  []Value
	Obj  []Member
}

// Member is one key/value pair of an object Value.
type Member struct {
	Key string
	Val Value
}

// Null returns the null Value.
func Null() Value { return Value{Kind: KindNull} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NumberValue wraps a float64.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// ArrayValue wraps a slice of Values.
func ArrayValue(items ...Value) Value { return Value{Kind: KindArray, Arr: items} }

// ObjectValue wraps an ordered member list.
func ObjectValue(members ...Member) Value { return Value{Kind: KindObject, Obj: members} }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Lookup returns the value for key in an object, matching exactly.
func (v Value) Lookup(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.Obj {
		if m.Key == key {
			return m.Val, true
		}
	}
	return Value{}, false
}

// Interface converts the Value back to the generic representation used by
// encoding/json (map order is lost; intended for responses and tests).
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindArray:
		out := make([]interface{}, len(v.Arr))
		for i, item := range v.Arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.Obj))
		for _, m := range v.Obj {
			out[m.Key] = m.Val.Interface()
		}
		return out
	default:
		return nil
	}
}
