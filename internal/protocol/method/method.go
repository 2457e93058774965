// Package method marshals the arguments of AMQP methods described by a
// schema.Method, in the order the signature declares them.
package method

import (
	"errors"
	"fmt"

	"github.com/danmuck/amqpwire/internal/observability"
	"github.com/danmuck/amqpwire/internal/protocol"
	"github.com/danmuck/amqpwire/internal/protocol/args"
	"github.com/danmuck/amqpwire/internal/protocol/schema"
	"github.com/danmuck/amqpwire/internal/protocol/sink"
	"github.com/rs/zerolog/log"
)

// Call is a method together with its argument values.
type Call struct {
	Method schema.Method
	Args   []schema.Arg
}

// Encode writes the method payload of c to s: class id, method id, then
// each argument, and flushes. It returns the number of bytes the sink
// accepted, which on failure is the partial count.
func Encode(s sink.Sink, c Call, opts ...protocol.Option) (uint64, error) {
	meter := sink.NewMetered(s)
	err := encode(meter, c, opts...)
	if err != nil {
		reason := Reason(err)
		log.Debug().Str("method", c.Method.Name).Str("reason", reason).Err(err).Msg("method.Encode failed")
		observability.RecordEncodeFailure(c.Method.Name, reason)
		return meter.Len(), err
	}
	log.Debug().Str("method", c.Method.Name).Uint64("bytes", meter.Len()).Msg("method.Encode")
	observability.RecordEncode(c.Method.Name, meter.Len())
	return meter.Len(), nil
}

// Size returns the number of bytes Encode would write for c.
func Size(c Call) (uint64, error) {
	var counter sink.Counter
	if err := encode(&counter, c); err != nil {
		return 0, err
	}
	return counter.Len(), nil
}

// Marshal returns the method payload of c.
func Marshal(c Call, opts ...protocol.Option) ([]byte, error) {
	var buf sink.Buffer
	if _, err := Encode(&buf, c, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(s sink.Sink, c Call, opts ...protocol.Option) error {
	if err := schema.Validate(c.Method, c.Args); err != nil {
		return err
	}
	w := args.New(s, opts...)
	if err := w.WriteShort(c.Method.ClassID); err != nil {
		return err
	}
	if err := w.WriteShort(c.Method.MethodID); err != nil {
		return err
	}
	for i, a := range c.Args {
		if err := writeArg(w, a); err != nil {
			return fmt.Errorf("method %s: %s: %w", c.Method.Name, c.Method.Params[i].Name, err)
		}
	}
	return w.Flush()
}

func writeArg(w *args.Writer, a schema.Arg) error {
	switch a.Type {
	case schema.TypeOctet:
		return w.WriteOctet(a.Octet)
	case schema.TypeShort:
		return w.WriteShort(a.Short)
	case schema.TypeLong:
		return w.WriteLong(a.Long)
	case schema.TypeLongLong:
		return w.WriteLongLong(a.LongLong)
	case schema.TypeBit:
		return w.WriteBit(a.Bit)
	case schema.TypeShortStr:
		return w.WriteShortString(a.Str)
	case schema.TypeLongStr:
		return w.WriteLongString(a.Str)
	case schema.TypeTimestamp:
		return w.WriteTimestamp(a.Timestamp)
	case schema.TypeTable:
		return w.WriteTable(a.Table)
	default:
		return &protocol.UnsupportedTypeError{Type: a.Type.String()}
	}
}

// Reason classifies an Encode failure for metrics.
func Reason(err error) string {
	var (
		ve  schema.ValidationError
		ee  *protocol.EncodingError
		ute *protocol.UnsupportedTypeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ee):
		return "encoding"
	case errors.As(err, &ute):
		return "unsupported_type"
	case sink.IsError(err):
		return "sink"
	default:
		return "other"
	}
}
