package protocol

import (
	"math"

	"github.com/danmuck/amqpwire/internal/protocol/sink"
)

// TableSize returns the number of bytes the entries of t encode to, which
// is the value of the table's length prefix. It runs the encoder against a
// counting sink so the prefix always matches what WriteTable emits.
func TableSize(t Table) (uint32, error) {
	var c sink.Counter
	w := NewValueWriter(&c)
	if err := w.writeEntries(t); err != nil {
		return 0, err
	}
	return prefix(c.Len())
}

// ArraySize returns the number of bytes the elements of a encode to.
func ArraySize(a Array) (uint32, error) {
	var c sink.Counter
	w := NewValueWriter(&c)
	if err := w.writeElements(a); err != nil {
		return 0, err
	}
	return prefix(c.Len())
}

// FieldValueSize returns the full encoded size of v, tag included.
func FieldValueSize(v Value) (uint64, error) {
	var c sink.Counter
	if err := NewValueWriter(&c).writeFieldValue(v); err != nil {
		return 0, err
	}
	return c.Len(), nil
}

func prefix(n uint64) (uint32, error) {
	if n > math.MaxUint32 {
		return 0, encodingError("length prefix", ErrLengthOverflow)
	}
	return uint32(n), nil
}
