package sink

import (
	"bytes"
	"encoding/binary"
)

// Buffer is an in-memory Sink. It never fails and records how many times
// it was flushed, which lets callers observe flush propagation.
type Buffer struct {
	buf     bytes.Buffer
	flushes int
}

func (b *Buffer) WriteByte(c byte) error {
	return b.buf.WriteByte(c)
}

func (b *Buffer) WriteUint16(v uint16) error {
	b.buf.Write(binary.BigEndian.AppendUint16(nil, v))
	return nil
}

func (b *Buffer) WriteUint32(v uint32) error {
	b.buf.Write(binary.BigEndian.AppendUint32(nil, v))
	return nil
}

func (b *Buffer) WriteUint64(v uint64) error {
	b.buf.Write(binary.BigEndian.AppendUint64(nil, v))
	return nil
}

func (b *Buffer) WriteRaw(p []byte) error {
	b.buf.Write(p)
	return nil
}

func (b *Buffer) Flush() error {
	b.flushes++
	return nil
}

// Bytes returns the bytes written so far. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Buffer) Len() int {
	return b.buf.Len()
}

// Flushes returns the number of Flush calls.
func (b *Buffer) Flushes() int {
	return b.flushes
}

func (b *Buffer) Reset() {
	b.buf.Reset()
	b.flushes = 0
}
