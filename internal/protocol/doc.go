// Package protocol owns the AMQP 0-9-1 field value model and its encoder.
//
// Ownership boundary:
// - field value union (Kind, Value, Table, Array, LongString)
// - primitive value writer (ValueWriter)
// - encoded size calculation for tables and arrays
//
// Bit packing of method arguments lives in protocol/args, the byte sink
// contract in protocol/sink.
package protocol
