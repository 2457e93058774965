package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var errShortInput = errors.New("decode: truncated input")

// reader is the inverse of ValueWriter, used to prove the encoding can be
// read back.
type reader struct {
	data []byte
	off  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) need(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, errShortInput
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) octet() (byte, error) {
	b, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) shortString() (string, error) {
	n, err := r.octet()
	if err != nil {
		return "", err
	}
	b, err := r.need(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) longBytes() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	b, err := r.need(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (r *reader) table() (Table, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	body, err := r.need(int(n))
	if err != nil {
		return nil, err
	}
	sub := newReader(body)
	t := Table{}
	for sub.remaining() > 0 {
		key, err := sub.shortString()
		if err != nil {
			return nil, err
		}
		v, err := sub.fieldValue()
		if err != nil {
			return nil, fmt.Errorf("table[%q]: %w", key, err)
		}
		t = append(t, Entry{Key: key, Value: v})
	}
	return t, nil
}

func (r *reader) array() (Array, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	body, err := r.need(int(n))
	if err != nil {
		return nil, err
	}
	sub := newReader(body)
	a := Array{}
	for sub.remaining() > 0 {
		v, err := sub.fieldValue()
		if err != nil {
			return nil, err
		}
		a = append(a, v)
	}
	return a, nil
}

func (r *reader) fieldValue() (Value, error) {
	tag, err := r.octet()
	if err != nil {
		return Value{}, err
	}
	switch Kind(tag) {
	case KindLongString:
		b, err := r.longBytes()
		return LongStringValue(string(b)), err
	case KindInt32:
		v, err := r.uint32()
		return Int32Value(int32(v)), err
	case KindDecimal:
		scale, err := r.octet()
		if err != nil {
			return Value{}, err
		}
		v, err := r.uint32()
		return DecimalValue(decimal.New(int64(int32(v)), -int32(scale))), err
	case KindTimestamp:
		v, err := r.uint64()
		return TimestampValue(time.Unix(int64(v), 0)), err
	case KindTable:
		t, err := r.table()
		return TableValue(t), err
	case KindInt8:
		v, err := r.octet()
		return Int8Value(int8(v)), err
	case KindFloat64:
		v, err := r.uint64()
		return Float64Value(math.Float64frombits(v)), err
	case KindFloat32:
		v, err := r.uint32()
		return Float32Value(math.Float32frombits(v)), err
	case KindInt64:
		v, err := r.uint64()
		return Int64Value(int64(v)), err
	case KindInt16:
		v, err := r.uint16()
		return Int16Value(int16(v)), err
	case KindBool:
		v, err := r.octet()
		return BoolValue(v != 0), err
	case KindBytes:
		b, err := r.longBytes()
		return BytesValue(b), err
	case KindVoid:
		return VoidValue(), nil
	case KindArray:
		a, err := r.array()
		return ArrayValue(a), err
	default:
		return Value{}, fmt.Errorf("decode: unknown tag %q", tag)
	}
}
