package protocol

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LongStringValue creates a long string field value from s.
func LongStringValue(s string) Value {
	return Value{kind: KindLongString, str: s}
}

// StreamValue creates a long string field value whose bytes come from ls.
func StreamValue(ls LongString) Value {
	return Value{kind: KindLongString, long: ls}
}

// Int32Value creates a 32-bit integer field value.
func Int32Value(v int32) Value {
	return Value{kind: KindInt32, num: int64(v)}
}

// Int64Value creates a 64-bit integer field value.
func Int64Value(v int64) Value {
	return Value{kind: KindInt64, num: v}
}

// Int16Value creates a 16-bit integer field value.
func Int16Value(v int16) Value {
	return Value{kind: KindInt16, num: int64(v)}
}

// Int8Value creates an 8-bit integer field value.
func Int8Value(v int8) Value {
	return Value{kind: KindInt8, num: int64(v)}
}

// Float64Value creates a double field value.
func Float64Value(v float64) Value {
	return Value{kind: KindFloat64, float: v}
}

// Float32Value creates a single precision field value.
func Float32Value(v float32) Value {
	return Value{kind: KindFloat32, float: float64(v)}
}

// BoolValue creates a boolean field value.
func BoolValue(v bool) Value {
	n := int64(0)
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// DecimalValue creates a decimal field value. Range is checked at encode
// time.
func DecimalValue(d decimal.Decimal) Value {
	return Value{kind: KindDecimal, dec: d}
}

// NewDecimal creates a decimal field value of unscaled * 10^-scale.
func NewDecimal(unscaled int32, scale uint8) Value {
	return DecimalValue(decimal.New(int64(unscaled), -int32(scale)))
}

// TimestampValue creates a timestamp field value.
func TimestampValue(t time.Time) Value {
	return Value{kind: KindTimestamp, num: timestampSeconds(t)}
}

// TableValue creates a nested table field value.
func TableValue(t Table) Value {
	return Value{kind: KindTable, table: t}
}

// ArrayValue creates an array field value. A nil a is encoded as absent.
func ArrayValue(a Array) Value {
	return Value{kind: KindArray, array: a}
}

// BytesValue creates a byte array field value.
func BytesValue(b []byte) Value {
	buf := make([]byte, len(b))
	copy(buf, b)
	return Value{kind: KindBytes, bytes: buf}
}

// VoidValue creates the void field value.
func VoidValue() Value {
	return Value{kind: KindVoid}
}

// String returns the long string payload. Streamed long strings return
// false since reading them would consume the source.
func (v Value) String() (string, bool) {
	if v.kind != KindLongString || v.long != nil {
		return "", false
	}
	return v.str, true
}

// Int returns the payload of any integer or boolean variant.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindBool, KindTimestamp:
		return v.num, true
	default:
		return 0, false
	}
}

// Float returns the payload of a float variant.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat32, KindFloat64:
		return v.float, true
	default:
		return 0, false
	}
}

// Bool returns the payload of a boolean value.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num != 0, true
}

// Decimal returns the payload of a decimal value.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindDecimal {
		return decimal.Decimal{}, false
	}
	return v.dec, true
}

// Time returns a timestamp value as whole seconds in UTC.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTimestamp {
		return time.Time{}, false
	}
	return time.Unix(v.num, 0).UTC(), true
}

// Bytes returns a copy of a byte array payload.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	buf := make([]byte, len(v.bytes))
	copy(buf, v.bytes)
	return buf, true
}

// Table returns the payload of a table value.
func (v Value) Table() (Table, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return v.table, true
}

// Array returns the payload of an array value.
func (v Value) Array() (Array, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.array, true
}

// FromAny converts a native Go value to its field value variant. Types
// with no exact variant fail with *UnsupportedTypeError; nothing is
// coerced, so int and the unsigned integers are rejected.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return VoidValue(), nil
	case Value:
		return v, nil
	case string:
		return LongStringValue(v), nil
	case LongString:
		return StreamValue(v), nil
	case int32:
		return Int32Value(v), nil
	case decimal.Decimal:
		return DecimalValue(v), nil
	case time.Time:
		return TimestampValue(v), nil
	case Table:
		return TableValue(v), nil
	case map[string]any:
		t, err := TableFromMap(v)
		if err != nil {
			return Value{}, err
		}
		return TableValue(t), nil
	case int8:
		return Int8Value(v), nil
	case float64:
		return Float64Value(v), nil
	case float32:
		return Float32Value(v), nil
	case int64:
		return Int64Value(v), nil
	case int16:
		return Int16Value(v), nil
	case bool:
		return BoolValue(v), nil
	case []byte:
		return BytesValue(v), nil
	case Array:
		return ArrayValue(v), nil
	case []any:
		if v == nil {
			return ArrayValue(nil), nil
		}
		a := make(Array, 0, len(v))
		for i, item := range v {
			fv, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("array[%d]: %w", i, err)
			}
			a = append(a, fv)
		}
		return ArrayValue(a), nil
	default:
		return Value{}, &UnsupportedTypeError{Type: fmt.Sprintf("%T", x)}
	}
}

// TableFromMap converts m to a Table. Go maps have no order, so entries
// are sorted by key to keep the encoding deterministic. A nil map gives
// the null table.
func TableFromMap(m map[string]any) (Table, error) {
	if m == nil {
		return nil, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := make(Table, 0, len(keys))
	for _, k := range keys {
		v, err := FromAny(m[k])
		if err != nil {
			return nil, fmt.Errorf("table[%q]: %w", k, err)
		}
		t = append(t, Entry{Key: k, Value: v})
	}
	return t, nil
}
