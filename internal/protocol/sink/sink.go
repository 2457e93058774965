// Package sink defines the byte destination the protocol writers emit
// through, plus the stream, counting and in-memory implementations.
package sink

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// DefaultBufferSize is the Stream buffer size used when none is given.
const DefaultBufferSize = 4096

// Sink is a synchronous big-endian byte destination. Every method either
// accepts all of its bytes or returns an *Error.
type Sink interface {
	WriteByte(c byte) error
	WriteUint16(v uint16) error
	WriteUint32(v uint32) error
	WriteUint64(v uint64) error
	WriteRaw(p []byte) error
	Flush() error
}

// Error reports a failure of the underlying destination.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "sink: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err came from a sink.
func IsError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// Stream writes through a buffered io.Writer. Once the destination fails
// every later call returns the same failure.
type Stream struct {
	w       *bufio.Writer
	scratch [8]byte
}

// NewStream wraps w with a write buffer of size bytes.
func NewStream(w io.Writer, size int) *Stream {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Stream{w: bufio.NewWriterSize(w, size)}
}

func (s *Stream) WriteByte(c byte) error {
	if err := s.w.WriteByte(c); err != nil {
		return &Error{Op: "write byte", Err: err}
	}
	return nil
}

func (s *Stream) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(s.scratch[:2], v)
	return s.write("write uint16", s.scratch[:2])
}

func (s *Stream) WriteUint32(v uint32) error {
	binary.BigEndian.PutUint32(s.scratch[:4], v)
	return s.write("write uint32", s.scratch[:4])
}

func (s *Stream) WriteUint64(v uint64) error {
	binary.BigEndian.PutUint64(s.scratch[:8], v)
	return s.write("write uint64", s.scratch[:8])
}

func (s *Stream) WriteRaw(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	return s.write("write raw", p)
}

func (s *Stream) Flush() error {
	if err := s.w.Flush(); err != nil {
		return &Error{Op: "flush", Err: err}
	}
	return nil
}

func (s *Stream) write(op string, p []byte) error {
	n, err := s.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	return nil
}

// Writer adapts s to io.Writer for bulk copies. It deliberately does not
// implement io.ReaderFrom so io.CopyBuffer keeps using the caller's buffer.
func Writer(s Sink) io.Writer {
	return rawWriter{s: s}
}

type rawWriter struct {
	s Sink
}

func (w rawWriter) Write(p []byte) (int, error) {
	if err := w.s.WriteRaw(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
