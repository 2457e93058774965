package protocol

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/danmuck/amqpwire/internal/protocol/sink"
	"github.com/shopspring/decimal"
)

// DefaultCopyBufferSize bounds the buffer used to stream long strings.
const DefaultCopyBufferSize = 4096

const maxShortString = 255

// Option configures a ValueWriter.
type Option func(*ValueWriter)

// WithCopyBufferSize sets the buffer size used by WriteLongStringFrom.
func WithCopyBufferSize(n int) Option {
	return func(w *ValueWriter) {
		if n > 0 {
			w.copySize = n
		}
	}
}

// ValueWriter encodes AMQP wire primitives and field values directly to a
// sink. It keeps no state between calls.
type ValueWriter struct {
	out      sink.Sink
	copySize int
	// counter is set when the writer only measures sizes.
	counter *sink.Counter
}

// NewValueWriter returns a ValueWriter targeting out.
func NewValueWriter(out sink.Sink, opts ...Option) *ValueWriter {
	w := &ValueWriter{out: out, copySize: DefaultCopyBufferSize}
	for _, opt := range opts {
		opt(w)
	}
	if c, ok := out.(*sink.Counter); ok {
		w.counter = c
	}
	return w
}

// WriteShortString writes a 1-byte length and the UTF-8 bytes of s.
func (w *ValueWriter) WriteShortString(s string) error {
	if err := checkShortString(s); err != nil {
		return err
	}
	if err := w.out.WriteByte(byte(len(s))); err != nil {
		return err
	}
	return w.out.WriteRaw([]byte(s))
}

// WriteLongString writes a 4-byte length and the UTF-8 bytes of s.
func (w *ValueWriter) WriteLongString(s string) error {
	if uint64(len(s)) > math.MaxUint32 {
		return encodingError("long string", ErrLengthOverflow)
	}
	if err := w.out.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	return w.out.WriteRaw([]byte(s))
}

// WriteLongStringFrom writes ls.Len() as the length and then copies exactly
// that many bytes from the source through a bounded buffer.
func (w *ValueWriter) WriteLongStringFrom(ls LongString) error {
	if err := checkLongString(ls); err != nil {
		return err
	}
	n := ls.Len()
	if err := w.out.WriteUint32(n); err != nil {
		return err
	}
	if w.counter != nil {
		w.counter.Add(uint64(n))
		return nil
	}
	if n == 0 {
		return nil
	}
	r, err := ls.Reader()
	if err != nil {
		return encodingError("long string", err)
	}
	buf := make([]byte, min(w.copySize, int(n)))
	copied, err := io.CopyBuffer(sink.Writer(w.out), io.LimitReader(r, int64(n)), buf)
	if err != nil {
		if sink.IsError(err) {
			return err
		}
		return fmt.Errorf("protocol: long string source: %w", err)
	}
	if copied != int64(n) {
		return encodingError("long string", fmt.Errorf("%w: declared %d, read %d", ErrLongStringTruncated, n, copied))
	}
	return nil
}

// WriteShort writes a 16-bit big-endian integer.
func (w *ValueWriter) WriteShort(v uint16) error {
	return w.out.WriteUint16(v)
}

// WriteLong writes a 32-bit big-endian integer. Lengths above 2^31-1 are
// written as their unsigned bit pattern.
func (w *ValueWriter) WriteLong(v uint32) error {
	return w.out.WriteUint32(v)
}

// WriteLongLong writes a 64-bit big-endian integer.
func (w *ValueWriter) WriteLongLong(v uint64) error {
	return w.out.WriteUint64(v)
}

// WriteOctet writes a single byte.
func (w *ValueWriter) WriteOctet(v uint8) error {
	return w.out.WriteByte(v)
}

// WriteTimestamp writes t as whole seconds since the epoch.
func (w *ValueWriter) WriteTimestamp(t time.Time) error {
	return w.out.WriteUint64(uint64(timestampSeconds(t)))
}

// WriteTable writes the encoded byte length of t followed by its entries.
// A nil table is written as a zero length. The size pass runs the full
// encoder, so a table holding an invalid value fails before any byte is
// written.
func (w *ValueWriter) WriteTable(t Table) error {
	if t == nil {
		return w.out.WriteUint32(0)
	}
	size, err := TableSize(t)
	if err != nil {
		return err
	}
	if err := w.out.WriteUint32(size); err != nil {
		return err
	}
	return w.writeEntries(t)
}

func (w *ValueWriter) writeEntries(t Table) error {
	for _, e := range t {
		if err := w.WriteShortString(e.Key); err != nil {
			return err
		}
		if err := w.writeFieldValue(e.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteArray writes the encoded byte length of a followed by each element
// as a field value. A nil array is written as a single zero byte, unlike
// the 4-byte zero of a nil table.
func (w *ValueWriter) WriteArray(a Array) error {
	if a == nil {
		return w.out.WriteByte(0)
	}
	size, err := ArraySize(a)
	if err != nil {
		return err
	}
	if err := w.out.WriteUint32(size); err != nil {
		return err
	}
	return w.writeElements(a)
}

func (w *ValueWriter) writeElements(a Array) error {
	for _, item := range a {
		if err := w.writeFieldValue(item); err != nil {
			return err
		}
	}
	return nil
}

// WriteFieldValue writes the wire tag of v followed by its payload. The
// value is checked first, so a failing call writes nothing.
func (w *ValueWriter) WriteFieldValue(v Value) error {
	if w.counter == nil {
		if err := checkValue(v); err != nil {
			return err
		}
	}
	return w.writeFieldValue(v)
}

// WriteAny converts x with FromAny and writes the result.
func (w *ValueWriter) WriteAny(x any) error {
	v, err := FromAny(x)
	if err != nil {
		return err
	}
	return w.WriteFieldValue(v)
}

// Flush flushes the underlying sink.
func (w *ValueWriter) Flush() error {
	return w.out.Flush()
}

func (w *ValueWriter) writeFieldValue(v Value) error {
	var (
		scale    uint8
		unscaled uint32
	)
	if v.kind == KindDecimal {
		var err error
		if scale, unscaled, err = decimalParts(v.dec); err != nil {
			return err
		}
	} else if !v.kind.Valid() {
		return unsupportedKind(v.kind)
	}

	if err := w.out.WriteByte(byte(v.kind)); err != nil {
		return err
	}

	switch v.kind {
	case KindLongString:
		if v.long != nil {
			return w.WriteLongStringFrom(v.long)
		}
		return w.WriteLongString(v.str)
	case KindInt32:
		return w.out.WriteUint32(uint32(int32(v.num)))
	case KindDecimal:
		if err := w.out.WriteByte(scale); err != nil {
			return err
		}
		return w.out.WriteUint32(unscaled)
	case KindTimestamp:
		return w.out.WriteUint64(uint64(v.num))
	case KindTable:
		return w.WriteTable(v.table)
	case KindInt8:
		return w.out.WriteByte(byte(int8(v.num)))
	case KindFloat64:
		return w.out.WriteUint64(math.Float64bits(v.float))
	case KindFloat32:
		return w.out.WriteUint32(math.Float32bits(float32(v.float)))
	case KindInt64:
		return w.out.WriteUint64(uint64(v.num))
	case KindInt16:
		return w.out.WriteUint16(uint16(int16(v.num)))
	case KindBool:
		return w.out.WriteByte(byte(v.num))
	case KindBytes:
		if uint64(len(v.bytes)) > math.MaxUint32 {
			return encodingError("byte array", ErrLengthOverflow)
		}
		if err := w.out.WriteUint32(uint32(len(v.bytes))); err != nil {
			return err
		}
		return w.out.WriteRaw(v.bytes)
	case KindVoid:
		return nil
	case KindArray:
		return w.WriteArray(v.array)
	default:
		return unsupportedKind(v.kind)
	}
}

// checkValue reports the error writeFieldValue would hit, without writing.
// Composite values are checked by sizing them.
func checkValue(v Value) error {
	switch v.kind {
	case KindTable:
		if v.table == nil {
			return nil
		}
		_, err := TableSize(v.table)
		return err
	case KindArray:
		if v.array == nil {
			return nil
		}
		_, err := ArraySize(v.array)
		return err
	case KindDecimal:
		_, _, err := decimalParts(v.dec)
		return err
	case KindLongString:
		if v.long != nil {
			return checkLongString(v.long)
		}
		return nil
	default:
		if !v.kind.Valid() {
			return unsupportedKind(v.kind)
		}
		return nil
	}
}

func checkShortString(s string) error {
	if len(s) > maxShortString {
		return encodingError("short string", fmt.Errorf("%w: utf-8 length %d, max %d", ErrShortStringTooLong, len(s), maxShortString))
	}
	if !utf8.ValidString(s) {
		return encodingError("short string", errInvalidUTF8)
	}
	return nil
}

// checkLongString rejects a streamed source that was already read. The
// size pass never opens the reader.
func checkLongString(ls LongString) error {
	if c, ok := ls.(interface{ consumed() bool }); ok && c.consumed() {
		return encodingError("long string", ErrLongStringConsumed)
	}
	return nil
}

var errInvalidUTF8 = errors.New("protocol: short string is not valid utf-8")

var ten = big.NewInt(10)

// decimalParts splits d into the wire scale and the low 32 bits of the
// unscaled value. A positive exponent is folded into the unscaled value.
// Magnitudes needing more than 32 bits are rejected.
func decimalParts(d decimal.Decimal) (uint8, uint32, error) {
	exp := d.Exponent()
	coef := d.Coefficient()
	if exp > 0 {
		if coef.Sign() != 0 {
			// 10^10 alone already needs more than 32 bits.
			if exp > 10 {
				return 0, 0, encodingError("decimal", ErrDecimalTooLarge)
			}
			coef.Mul(coef, new(big.Int).Exp(ten, big.NewInt(int64(exp)), nil))
		}
		exp = 0
	}
	if -exp > math.MaxUint8 {
		return 0, 0, encodingError("decimal", fmt.Errorf("%w: scale %d, max %d", ErrDecimalScale, -exp, math.MaxUint8))
	}
	if coef.BitLen() > 32 {
		return 0, 0, encodingError("decimal", fmt.Errorf("%w: unscaled %s", ErrDecimalTooLarge, coef.String()))
	}
	return uint8(-exp), uint32(coef.Int64()), nil
}

func unsupportedKind(k Kind) error {
	return &UnsupportedTypeError{Type: k.String()}
}
