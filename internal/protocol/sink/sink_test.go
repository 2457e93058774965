package sink

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return len(p) - 1, nil
}

func TestStreamWritesBigEndian(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(&out, 0)
	if err := s.WriteByte(0x7f); err != nil {
		t.Fatalf("write byte: %v", err)
	}
	if err := s.WriteUint16(0x0102); err != nil {
		t.Fatalf("write uint16: %v", err)
	}
	if err := s.WriteUint32(0x03040506); err != nil {
		t.Fatalf("write uint32: %v", err)
	}
	if err := s.WriteUint64(0x0708090a0b0c0d0e); err != nil {
		t.Fatalf("write uint64: %v", err)
	}
	if err := s.WriteRaw([]byte("ok")); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected buffered output before flush, got %d bytes", out.Len())
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	want := []byte{
		0x7f,
		0x01, 0x02,
		0x03, 0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e,
		'o', 'k',
	}
	if !bytes.Equal(out.Bytes(), want) {
		t.Fatalf("stream bytes mismatch:\n got %x\nwant %x", out.Bytes(), want)
	}
}

func TestStreamFailureIsSinkError(t *testing.T) {
	boom := errors.New("boom")
	s := NewStream(failingWriter{err: boom}, 16)
	if err := s.WriteRaw([]byte("abc")); err != nil {
		t.Fatalf("buffered write should not fail yet: %v", err)
	}
	err := s.Flush()
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if se.Op != "flush" || !errors.Is(err, boom) {
		t.Fatalf("unexpected sink error: %+v", se)
	}
	if err := s.WriteByte(1); !errors.Is(err, boom) {
		t.Fatalf("expected sticky failure, got %v", err)
	}
}

func TestStreamShortWrite(t *testing.T) {
	s := NewStream(shortWriter{}, 16)
	if err := s.WriteRaw([]byte("abc")); err != nil {
		t.Fatalf("buffered write should not fail yet: %v", err)
	}
	err := s.Flush()
	if !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("expected io.ErrShortWrite, got %v", err)
	}
	if !IsError(err) {
		t.Fatalf("expected short write to report a sink error")
	}
}

func TestCounterAndMetered(t *testing.T) {
	var c Counter
	m := NewMetered(&c)
	_ = m.WriteByte(1)
	_ = m.WriteUint16(2)
	_ = m.WriteUint32(3)
	_ = m.WriteUint64(4)
	_ = m.WriteRaw([]byte("hello"))
	if c.Len() != 20 || m.Len() != 20 {
		t.Fatalf("expected 20 counted bytes, got counter=%d metered=%d", c.Len(), m.Len())
	}
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("expected reset counter")
	}
}

func TestMeteredSkipsFailedWrites(t *testing.T) {
	m := NewMetered(NewStream(failingWriter{err: errors.New("closed")}, 1))
	if err := m.WriteRaw([]byte("abcd")); err == nil {
		t.Fatalf("expected failure")
	}
	if m.Len() != 0 {
		t.Fatalf("expected no bytes counted, got %d", m.Len())
	}
}

func TestBufferCountsFlushes(t *testing.T) {
	var b Buffer
	_ = b.WriteUint16(0xbeef)
	_ = b.Flush()
	_ = b.Flush()
	if !bytes.Equal(b.Bytes(), []byte{0xbe, 0xef}) || b.Flushes() != 2 {
		t.Fatalf("unexpected buffer state: %x flushes=%d", b.Bytes(), b.Flushes())
	}
}

func TestWriterAdapter(t *testing.T) {
	var b Buffer
	n, err := io.Copy(Writer(&b), bytes.NewReader([]byte("payload")))
	if err != nil || n != 7 {
		t.Fatalf("copy: n=%d err=%v", n, err)
	}
	if string(b.Bytes()) != "payload" {
		t.Fatalf("unexpected copy result %q", b.Bytes())
	}
}
