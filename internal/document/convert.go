package document

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/danmuck/amqpwire/internal/protocol"
	"github.com/danmuck/amqpwire/internal/protocol/schema"
	"github.com/shopspring/decimal"
)

// An inline table carrying typeKey selects the variant of valueKey.
const (
	typeKey  = "$type"
	valueKey = "value"
)

// field is one key of a parsed mapping. Values are nil, string, int64,
// float64, bool, time.Time, []byte, fields or []any.
type field struct {
	key string
	val any
}

type fields []field

func (fs fields) get(key string) (any, bool) {
	for _, f := range fs {
		if f.key == key {
			return f.val, true
		}
	}
	return nil, false
}

func toTable(fs fields) (protocol.Table, error) {
	t := make(protocol.Table, 0, len(fs))
	for _, f := range fs {
		v, err := toValue(f.val)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", f.key, err)
		}
		t = append(t, protocol.Entry{Key: f.key, Value: v})
	}
	return t, nil
}

func toArray(items []any) (protocol.Array, error) {
	a := make(protocol.Array, 0, len(items))
	for i, item := range items {
		v, err := toValue(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		a = append(a, v)
	}
	return a, nil
}

func toValue(x any) (protocol.Value, error) {
	switch v := x.(type) {
	case fields:
		if _, ok := v.get(typeKey); ok {
			return typedValue(v)
		}
		t, err := toTable(v)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.TableValue(t), nil
	case []any:
		a, err := toArray(v)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.ArrayValue(a), nil
	default:
		return protocol.FromAny(x)
	}
}

func typedValue(fs fields) (protocol.Value, error) {
	tagRaw, _ := fs.get(typeKey)
	tag, _ := tagRaw.(string)
	kind, ok := protocol.ParseKind(tag)
	if !ok {
		return protocol.Value{}, fmt.Errorf("unknown %s %v", typeKey, tagRaw)
	}
	for _, f := range fs {
		if f.key != typeKey && f.key != valueKey {
			return protocol.Value{}, fmt.Errorf("unexpected key %q beside %s", f.key, typeKey)
		}
	}
	raw, has := fs.get(valueKey)
	if !has && kind != protocol.KindVoid {
		return protocol.Value{}, fmt.Errorf("%s %s needs a %s", typeKey, tag, valueKey)
	}

	switch kind {
	case protocol.KindLongString:
		s, ok := raw.(string)
		if !ok {
			return protocol.Value{}, mismatch("string", raw)
		}
		return protocol.LongStringValue(s), nil
	case protocol.KindInt32:
		n, err := intIn(raw, math.MinInt32, math.MaxInt32)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Int32Value(int32(n)), nil
	case protocol.KindInt16:
		n, err := intIn(raw, math.MinInt16, math.MaxInt16)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Int16Value(int16(n)), nil
	case protocol.KindInt8:
		n, err := intIn(raw, math.MinInt8, math.MaxInt8)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Int8Value(int8(n)), nil
	case protocol.KindInt64:
		n, err := intIn(raw, math.MinInt64, math.MaxInt64)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Int64Value(n), nil
	case protocol.KindFloat64:
		f, err := toFloat(raw)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Float64Value(f), nil
	case protocol.KindFloat32:
		f, err := toFloat(raw)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Float32Value(float32(f)), nil
	case protocol.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return protocol.Value{}, mismatch("bool", raw)
		}
		return protocol.BoolValue(b), nil
	case protocol.KindDecimal:
		d, err := toDecimal(raw)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.DecimalValue(d), nil
	case protocol.KindTimestamp:
		t, err := toTime(raw)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.TimestampValue(t), nil
	case protocol.KindBytes:
		b, err := toBytes(raw)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.BytesValue(b), nil
	case protocol.KindVoid:
		return protocol.VoidValue(), nil
	case protocol.KindTable:
		if raw == nil {
			return protocol.TableValue(nil), nil
		}
		inner, ok := raw.(fields)
		if !ok {
			return protocol.Value{}, mismatch("table", raw)
		}
		t, err := toTable(inner)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.TableValue(t), nil
	case protocol.KindArray:
		if raw == nil {
			return protocol.ArrayValue(nil), nil
		}
		items, ok := raw.([]any)
		if !ok {
			return protocol.Value{}, mismatch("array", raw)
		}
		a, err := toArray(items)
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.ArrayValue(a), nil
	}
	return protocol.Value{}, fmt.Errorf("unknown %s %v", typeKey, tagRaw)
}

func toArg(p schema.Param, raw any) (schema.Arg, error) {
	switch p.Type {
	case schema.TypeOctet:
		n, err := intIn(raw, 0, math.MaxUint8)
		if err != nil {
			return schema.Arg{}, err
		}
		return schema.OctetArg(uint8(n)), nil
	case schema.TypeShort:
		n, err := intIn(raw, 0, math.MaxUint16)
		if err != nil {
			return schema.Arg{}, err
		}
		return schema.ShortArg(uint16(n)), nil
	case schema.TypeLong:
		n, err := intIn(raw, 0, math.MaxUint32)
		if err != nil {
			return schema.Arg{}, err
		}
		return schema.LongArg(uint32(n)), nil
	case schema.TypeLongLong:
		n, err := intIn(raw, 0, math.MaxInt64)
		if err != nil {
			return schema.Arg{}, err
		}
		return schema.LongLongArg(uint64(n)), nil
	case schema.TypeBit:
		b, ok := raw.(bool)
		if !ok {
			return schema.Arg{}, mismatch("bool", raw)
		}
		return schema.BitArg(b), nil
	case schema.TypeShortStr:
		s, ok := raw.(string)
		if !ok {
			return schema.Arg{}, mismatch("string", raw)
		}
		return schema.ShortStrArg(s), nil
	case schema.TypeLongStr:
		s, ok := raw.(string)
		if !ok {
			return schema.Arg{}, mismatch("string", raw)
		}
		return schema.LongStrArg(s), nil
	case schema.TypeTimestamp:
		t, err := toTime(raw)
		if err != nil {
			return schema.Arg{}, err
		}
		return schema.TimestampArg(t), nil
	case schema.TypeTable:
		if raw == nil {
			return schema.TableArg(nil), nil
		}
		fs, ok := raw.(fields)
		if !ok {
			return schema.Arg{}, mismatch("table", raw)
		}
		t, err := toTable(fs)
		if err != nil {
			return schema.Arg{}, err
		}
		return schema.TableArg(t), nil
	}
	return schema.Arg{}, fmt.Errorf("unsupported parameter type %s", p.Type)
}

func intIn(raw any, lo, hi int64) (int64, error) {
	n, ok := raw.(int64)
	if !ok {
		return 0, mismatch("integer", raw)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	}
	return 0, mismatch("number", raw)
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("decimal %q: %w", v, err)
		}
		return d, nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	return decimal.Decimal{}, mismatch("decimal", raw)
}

// toTime accepts a datetime or whole seconds since the epoch.
func toTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	}
	return time.Time{}, mismatch("datetime", raw)
}

// toBytes accepts raw bytes or base64 text.
func toBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(v), ""))
		if err != nil {
			return nil, fmt.Errorf("bytes: %w", err)
		}
		return b, nil
	}
	return nil, mismatch("bytes", raw)
}

func mismatch(want string, got any) error {
	return fmt.Errorf("expected %s, got %s", want, describe(got))
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case fields:
		return "table"
	case []any:
		return "array"
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "bool"
	case time.Time:
		return "datetime"
	case []byte:
		return "bytes"
	}
	return fmt.Sprintf("%T", v)
}
