// Package args encodes AMQP method arguments. It adds bit packing on top
// of protocol.ValueWriter: runs of up to eight consecutive bit arguments
// share one octet, bit 0 holding the first.
package args

import (
	"time"

	"github.com/danmuck/amqpwire/internal/protocol"
	"github.com/danmuck/amqpwire/internal/protocol/sink"
)

// State is the state of the bit accumulator.
type State uint8

const (
	// Empty holds no pending bits.
	Empty State = iota
	// Accumulating holds at least one bit that has not been written.
	Accumulating
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Accumulating:
		return "accumulating"
	default:
		return "unknown"
	}
}

const firstBit = 0x01

// Writer writes method arguments. A Writer belongs to one encoding
// sequence and must not be shared between goroutines.
type Writer struct {
	out   *protocol.ValueWriter
	state State
	bits  byte
	mask  uint16
}

// New returns a Writer encoding to s.
func New(s sink.Sink, opts ...protocol.Option) *Writer {
	return Wrap(protocol.NewValueWriter(s, opts...))
}

// Wrap returns a Writer delegating non-bit values to out.
func Wrap(out *protocol.ValueWriter) *Writer {
	w := &Writer{out: out}
	w.reset()
	return w
}

// State reports whether bits are pending.
func (w *Writer) State() State {
	return w.state
}

func (w *Writer) reset() {
	w.state = Empty
	w.bits = 0
	w.mask = firstBit
}

// flushBits writes the pending octet, if any. On failure the accumulator
// is left untouched.
func (w *Writer) flushBits() error {
	if w.state != Accumulating {
		return nil
	}
	if err := w.out.WriteOctet(w.bits); err != nil {
		return err
	}
	w.reset()
	return nil
}

// WriteBit adds one bit to the current octet. The ninth consecutive bit
// starts a new octet.
func (w *Writer) WriteBit(b bool) error {
	if w.mask > 0x80 {
		if err := w.flushBits(); err != nil {
			return err
		}
	}
	if b {
		w.bits |= byte(w.mask)
	}
	w.mask <<= 1
	w.state = Accumulating
	return nil
}

func (w *Writer) WriteShortString(s string) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteShortString(s)
}

func (w *Writer) WriteLongString(s string) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteLongString(s)
}

func (w *Writer) WriteLongStringFrom(ls protocol.LongString) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteLongStringFrom(ls)
}

func (w *Writer) WriteShort(v uint16) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteShort(v)
}

func (w *Writer) WriteLong(v uint32) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteLong(v)
}

func (w *Writer) WriteLongLong(v uint64) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteLongLong(v)
}

func (w *Writer) WriteOctet(v uint8) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteOctet(v)
}

func (w *Writer) WriteTimestamp(t time.Time) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteTimestamp(t)
}

func (w *Writer) WriteTable(t protocol.Table) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteTable(t)
}

func (w *Writer) WriteFieldValue(v protocol.Value) error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.WriteFieldValue(v)
}

// Flush writes any pending bits and then flushes the sink.
func (w *Writer) Flush() error {
	if err := w.flushBits(); err != nil {
		return err
	}
	return w.out.Flush()
}
