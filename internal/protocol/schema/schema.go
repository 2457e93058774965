// Package schema declares AMQP 0-9-1 method signatures: class and method
// ids plus the ordered, typed parameters a method carries.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danmuck/amqpwire/internal/protocol"
	"github.com/rs/zerolog/log"
)

// ArgType is the wire domain of a method parameter.
type ArgType uint8

const (
	TypeOctet ArgType = iota + 1
	TypeShort
	TypeLong
	TypeLongLong
	TypeBit
	TypeShortStr
	TypeLongStr
	TypeTimestamp
	TypeTable
)

var argTypeNames = map[ArgType]string{
	TypeOctet:     "octet",
	TypeShort:     "short",
	TypeLong:      "long",
	TypeLongLong:  "longlong",
	TypeBit:       "bit",
	TypeShortStr:  "shortstr",
	TypeLongStr:   "longstr",
	TypeTimestamp: "timestamp",
	TypeTable:     "table",
}

func (t ArgType) String() string {
	if name, ok := argTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ArgType(%d)", uint8(t))
}

// ParseArgType resolves a domain name such as "shortstr".
func ParseArgType(name string) (ArgType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range argTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Class ids.
const (
	ClassConnection uint16 = 10
	ClassChannel    uint16 = 20
	ClassExchange   uint16 = 40
	ClassQueue      uint16 = 50
	ClassBasic      uint16 = 60
	ClassConfirm    uint16 = 85
	ClassTx         uint16 = 90
)

// Param is one declared method parameter.
type Param struct {
	Name string
	Type ArgType
}

// Method is a method signature.
type Method struct {
	Name     string
	ClassID  uint16
	MethodID uint16
	Params   []Param
}

// Param returns the position of the named parameter.
func (m Method) Param(name string) (int, bool) {
	for i, p := range m.Params {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (m Method) String() string {
	parts := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		parts = append(parts, p.Name+" "+p.Type.String())
	}
	return fmt.Sprintf("%s(%d.%d)[%s]", m.Name, m.ClassID, m.MethodID, strings.Join(parts, ", "))
}

// Arg is one typed method argument. Only the field matching Type is read.
type Arg struct {
	Type      ArgType
	Octet     uint8
	Short     uint16
	Long      uint32
	LongLong  uint64
	Bit       bool
	Str       string
	Timestamp time.Time
	Table     protocol.Table
}

func OctetArg(v uint8) Arg          { return Arg{Type: TypeOctet, Octet: v} }
func ShortArg(v uint16) Arg         { return Arg{Type: TypeShort, Short: v} }
func LongArg(v uint32) Arg          { return Arg{Type: TypeLong, Long: v} }
func LongLongArg(v uint64) Arg      { return Arg{Type: TypeLongLong, LongLong: v} }
func BitArg(v bool) Arg             { return Arg{Type: TypeBit, Bit: v} }
func ShortStrArg(v string) Arg      { return Arg{Type: TypeShortStr, Str: v} }
func LongStrArg(v string) Arg       { return Arg{Type: TypeLongStr, Str: v} }
func TimestampArg(v time.Time) Arg  { return Arg{Type: TypeTimestamp, Timestamp: v} }
func TableArg(v protocol.Table) Arg { return Arg{Type: TypeTable, Table: v} }

// ValidationError reports arguments that do not fit a method signature.
type ValidationError struct {
	Method string
	Param  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("schema: method=%s: %s", e.Method, e.Reason)
	}
	return fmt.Sprintf("schema: method=%s param=%s: %s", e.Method, e.Param, e.Reason)
}

// Validate checks that args match the parameters of m in count and type.
func Validate(m Method, args []Arg) error {
	log.Debug().Str("method", m.Name).Int("args", len(args)).Msg("schema.Validate")
	if len(args) != len(m.Params) {
		log.Warn().Str("method", m.Name).Int("got", len(args)).Int("want", len(m.Params)).Msg("schema.Validate argument count")
		return ValidationError{
			Method: m.Name,
			Reason: fmt.Sprintf("expected %d arguments, got %d", len(m.Params), len(args)),
		}
	}
	for i, p := range m.Params {
		if args[i].Type != p.Type {
			log.Warn().
				Str("method", m.Name).
				Str("param", p.Name).
				Stringer("got", args[i].Type).
				Stringer("want", p.Type).
				Msg("schema.Validate type mismatch")
			return ValidationError{
				Method: m.Name,
				Param:  p.Name,
				Reason: fmt.Sprintf("type mismatch: got %s want %s", args[i].Type, p.Type),
			}
		}
	}
	return nil
}

func method(name string, classID, methodID uint16, params ...Param) Method {
	return Method{Name: name, ClassID: classID, MethodID: methodID, Params: params}
}

func p(name string, t ArgType) Param {
	return Param{Name: name, Type: t}
}

var registry = indexMethods(
	method("connection.start-ok", ClassConnection, 11,
		p("client-properties", TypeTable),
		p("mechanism", TypeShortStr),
		p("response", TypeLongStr),
		p("locale", TypeShortStr),
	),
	method("connection.tune-ok", ClassConnection, 31,
		p("channel-max", TypeShort),
		p("frame-max", TypeLong),
		p("heartbeat", TypeShort),
	),
	method("connection.open", ClassConnection, 40,
		p("virtual-host", TypeShortStr),
		p("reserved-1", TypeShortStr),
		p("reserved-2", TypeBit),
	),
	method("connection.close", ClassConnection, 50,
		p("reply-code", TypeShort),
		p("reply-text", TypeShortStr),
		p("class-id", TypeShort),
		p("method-id", TypeShort),
	),
	method("connection.close-ok", ClassConnection, 51),
	method("channel.open", ClassChannel, 10,
		p("reserved-1", TypeShortStr),
	),
	method("channel.close", ClassChannel, 40,
		p("reply-code", TypeShort),
		p("reply-text", TypeShortStr),
		p("class-id", TypeShort),
		p("method-id", TypeShort),
	),
	method("channel.close-ok", ClassChannel, 41),
	method("exchange.declare", ClassExchange, 10,
		p("reserved-1", TypeShort),
		p("exchange", TypeShortStr),
		p("type", TypeShortStr),
		p("passive", TypeBit),
		p("durable", TypeBit),
		p("auto-delete", TypeBit),
		p("internal", TypeBit),
		p("no-wait", TypeBit),
		p("arguments", TypeTable),
	),
	method("exchange.delete", ClassExchange, 20,
		p("reserved-1", TypeShort),
		p("exchange", TypeShortStr),
		p("if-unused", TypeBit),
		p("no-wait", TypeBit),
	),
	method("exchange.bind", ClassExchange, 30,
		p("reserved-1", TypeShort),
		p("destination", TypeShortStr),
		p("source", TypeShortStr),
		p("routing-key", TypeShortStr),
		p("no-wait", TypeBit),
		p("arguments", TypeTable),
	),
	method("queue.declare", ClassQueue, 10,
		p("reserved-1", TypeShort),
		p("queue", TypeShortStr),
		p("passive", TypeBit),
		p("durable", TypeBit),
		p("exclusive", TypeBit),
		p("auto-delete", TypeBit),
		p("no-wait", TypeBit),
		p("arguments", TypeTable),
	),
	method("queue.bind", ClassQueue, 20,
		p("reserved-1", TypeShort),
		p("queue", TypeShortStr),
		p("exchange", TypeShortStr),
		p("routing-key", TypeShortStr),
		p("no-wait", TypeBit),
		p("arguments", TypeTable),
	),
	method("queue.purge", ClassQueue, 30,
		p("reserved-1", TypeShort),
		p("queue", TypeShortStr),
		p("no-wait", TypeBit),
	),
	method("queue.delete", ClassQueue, 40,
		p("reserved-1", TypeShort),
		p("queue", TypeShortStr),
		p("if-unused", TypeBit),
		p("if-empty", TypeBit),
		p("no-wait", TypeBit),
	),
	method("queue.unbind", ClassQueue, 50,
		p("reserved-1", TypeShort),
		p("queue", TypeShortStr),
		p("exchange", TypeShortStr),
		p("routing-key", TypeShortStr),
		p("arguments", TypeTable),
	),
	method("basic.qos", ClassBasic, 10,
		p("prefetch-size", TypeLong),
		p("prefetch-count", TypeShort),
		p("global", TypeBit),
	),
	method("basic.consume", ClassBasic, 20,
		p("reserved-1", TypeShort),
		p("queue", TypeShortStr),
		p("consumer-tag", TypeShortStr),
		p("no-local", TypeBit),
		p("no-ack", TypeBit),
		p("exclusive", TypeBit),
		p("no-wait", TypeBit),
		p("arguments", TypeTable),
	),
	method("basic.cancel", ClassBasic, 30,
		p("consumer-tag", TypeShortStr),
		p("no-wait", TypeBit),
	),
	method("basic.publish", ClassBasic, 40,
		p("reserved-1", TypeShort),
		p("exchange", TypeShortStr),
		p("routing-key", TypeShortStr),
		p("mandatory", TypeBit),
		p("immediate", TypeBit),
	),
	method("basic.get", ClassBasic, 70,
		p("reserved-1", TypeShort),
		p("queue", TypeShortStr),
		p("no-ack", TypeBit),
	),
	method("basic.ack", ClassBasic, 80,
		p("delivery-tag", TypeLongLong),
		p("multiple", TypeBit),
	),
	method("basic.reject", ClassBasic, 90,
		p("delivery-tag", TypeLongLong),
		p("requeue", TypeBit),
	),
	method("basic.recover", ClassBasic, 110,
		p("requeue", TypeBit),
	),
	method("basic.nack", ClassBasic, 120,
		p("delivery-tag", TypeLongLong),
		p("multiple", TypeBit),
		p("requeue", TypeBit),
	),
	method("confirm.select", ClassConfirm, 10,
		p("no-wait", TypeBit),
	),
	method("tx.select", ClassTx, 10),
	method("tx.commit", ClassTx, 20),
	method("tx.rollback", ClassTx, 30),
)

func indexMethods(methods ...Method) map[string]Method {
	out := make(map[string]Method, len(methods))
	for _, m := range methods {
		if _, dup := out[m.Name]; dup {
			panic("schema: duplicate method " + m.Name)
		}
		out[m.Name] = m
	}
	return out
}

// Lookup returns the signature registered under name, e.g. "basic.publish".
func Lookup(name string) (Method, bool) {
	m, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Methods returns every registered signature ordered by class and method id.
func Methods() []Method {
	out := make([]Method, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassID != out[j].ClassID {
			return out[i].ClassID < out[j].ClassID
		}
		return out[i].MethodID < out[j].MethodID
	})
	return out
}
