package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/amqpwire/internal/protocol/sink"
)

var (
	ErrShortStringTooLong  = errors.New("protocol: short string too long")
	ErrDecimalTooLarge     = errors.New("protocol: decimal unscaled value exceeds 32 bits")
	ErrDecimalScale        = errors.New("protocol: decimal scale out of range")
	ErrLongStringTruncated = errors.New("protocol: long string source shorter than declared length")
	ErrLongStringConsumed  = errors.New("protocol: streamed long string already consumed")
	ErrLengthOverflow      = errors.New("protocol: encoded length exceeds 32 bits")
)

// SinkError is the failure type of the underlying byte sink.
type SinkError = sink.Error

// EncodingError reports a value that violates a wire constraint. Nothing
// of the failing value has been written when it is returned.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError reports a value with no field value variant.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return "protocol: unsupported field value type " + e.Type
}

func encodingError(op string, err error) error {
	return &EncodingError{Op: op, Err: err}
}
