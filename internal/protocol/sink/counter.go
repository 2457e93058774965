package sink

// Counter is a Sink that discards bytes and counts them. The protocol
// size calculator runs the real encoder against it.
type Counter struct {
	n uint64
}

func (c *Counter) WriteByte(byte) error {
	c.n++
	return nil
}

func (c *Counter) WriteUint16(uint16) error {
	c.n += 2
	return nil
}

func (c *Counter) WriteUint32(uint32) error {
	c.n += 4
	return nil
}

func (c *Counter) WriteUint64(uint64) error {
	c.n += 8
	return nil
}

func (c *Counter) WriteRaw(p []byte) error {
	c.n += uint64(len(p))
	return nil
}

func (c *Counter) Flush() error {
	return nil
}

// Len returns the number of bytes counted since the last Reset.
func (c *Counter) Len() uint64 {
	return c.n
}

func (c *Counter) Reset() {
	c.n = 0
}

// Metered forwards to another Sink and counts the bytes it accepted.
type Metered struct {
	Sink
	n uint64
}

// NewMetered wraps s.
func NewMetered(s Sink) *Metered {
	return &Metered{Sink: s}
}

func (m *Metered) WriteByte(c byte) error {
	return m.count(1, m.Sink.WriteByte(c))
}

func (m *Metered) WriteUint16(v uint16) error {
	return m.count(2, m.Sink.WriteUint16(v))
}

func (m *Metered) WriteUint32(v uint32) error {
	return m.count(4, m.Sink.WriteUint32(v))
}

func (m *Metered) WriteUint64(v uint64) error {
	return m.count(8, m.Sink.WriteUint64(v))
}

func (m *Metered) WriteRaw(p []byte) error {
	return m.count(uint64(len(p)), m.Sink.WriteRaw(p))
}

// Len returns the number of bytes successfully forwarded.
func (m *Metered) Len() uint64 {
	return m.n
}

func (m *Metered) count(n uint64, err error) error {
	if err == nil {
		m.n += n
	}
	return err
}

// Add counts n bytes that were accounted for without being produced.
func (c *Counter) Add(n uint64) {
	c.n += n
}
