package protocol

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies a field value variant. Its value is the wire tag.
type Kind byte

const (
	KindLongString Kind = 'S'
	KindInt32      Kind = 'I'
	KindDecimal    Kind = 'D'
	KindTimestamp  Kind = 'T'
	KindTable      Kind = 'F'
	KindInt8       Kind = 'b'
	KindFloat64    Kind = 'd'
	KindFloat32    Kind = 'f'
	KindInt64      Kind = 'l'
	KindInt16      Kind = 's'
	KindBool       Kind = 't'
	KindBytes      Kind = 'x'
	KindVoid       Kind = 'V'
	KindArray      Kind = 'A'
)

var kindNames = map[Kind]string{
	KindLongString: "longstr",
	KindInt32:      "int32",
	KindDecimal:    "decimal",
	KindTimestamp:  "timestamp",
	KindTable:      "table",
	KindInt8:       "int8",
	KindFloat64:    "float64",
	KindFloat32:    "float32",
	KindInt64:      "int64",
	KindInt16:      "int16",
	KindBool:       "bool",
	KindBytes:      "bytes",
	KindVoid:       "void",
	KindArray:      "array",
}

// Valid reports whether k is one of the known wire tags.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%#02x)", byte(k))
}

// ParseKind resolves a single-character wire tag.
func ParseKind(tag string) (Kind, bool) {
	if len(tag) != 1 {
		return 0, false
	}
	k := Kind(tag[0])
	return k, k.Valid()
}

// Value is one field value. The zero Value carries no kind and cannot be
// encoded.
type Value struct {
	kind  Kind
	str   string
	long  LongString
	num   int64
	float float64
	dec   decimal.Decimal
	bytes []byte
	table Table
	array Array
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Entry is one key/value pair of a Table.
type Entry struct {
	Key   string
	Value Value
}

// Table is an ordered field table. Slice order is wire order. A nil Table
// is the null table.
type Table []Entry

// Get returns the first entry with key.
func (t Table) Get(key string) (Value, bool) {
	for _, e := range t {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value of key in place or appends a new entry.
func (t Table) Set(key string, v Value) Table {
	for i := range t {
		if t[i].Key == key {
			t[i].Value = v
			return t
		}
	}
	return append(t, Entry{Key: key, Value: v})
}

// Array is an ordered list of field values. A nil Array is absent and
// encodes differently from an empty one.
type Array []Value

// LongString is a long string whose bytes are produced by a reader, so the
// payload never has to be held in memory at once.
type LongString interface {
	Len() uint32
	Reader() (io.Reader, error)
}

// BytesLongString is a re-readable LongString backed by a byte slice.
type BytesLongString []byte

func (b BytesLongString) Len() uint32 {
	return uint32(len(b))
}

func (b BytesLongString) Reader() (io.Reader, error) {
	return bytes.NewReader(b), nil
}

type streamedLongString struct {
	n    uint32
	r    io.Reader
	used bool
}

// NewStreamedLongString declares a long string of n bytes read from r.
// The result can be read once.
func NewStreamedLongString(n uint32, r io.Reader) LongString {
	return &streamedLongString{n: n, r: r}
}

func (s *streamedLongString) Len() uint32 {
	return s.n
}

func (s *streamedLongString) consumed() bool {
	return s.used
}

func (s *streamedLongString) Reader() (io.Reader, error) {
	if s.used {
		return nil, ErrLongStringConsumed
	}
	s.used = true
	return s.r, nil
}

// timestampSeconds truncates whole milliseconds toward zero, matching
// millisecond clocks that divide by 1000. It avoids UnixMilli, which
// overflows far from the epoch.
func timestampSeconds(t time.Time) int64 {
	sec := t.Unix()
	if sec < 0 && t.Nanosecond() >= int(time.Millisecond) {
		sec++
	}
	return sec
}
