package schema

import (
	"bytes"
	"errors"
	"go/format"
	"os"
	"testing"

	"github.com/danmuck/amqpwire/internal/testutil/testlog"
)

func publishArgs() []Arg {
	return []Arg{
		ShortArg(0),
		ShortStrArg("amq.direct"),
		ShortStrArg("jobs"),
		BitArg(true),
		BitArg(false),
	}
}

func TestLookupPublish(t *testing.T) {
	testlog.Start(t)
	m, ok := Lookup(" Basic.Publish ")
	if !ok {
		t.Fatalf("basic.publish not registered")
	}
	if m.ClassID != ClassBasic || m.MethodID != 40 || len(m.Params) != 5 {
		t.Fatalf("unexpected signature %s", m)
	}
	if i, ok := m.Param("mandatory"); !ok || i != 3 {
		t.Fatalf("mandatory at %d ok=%v", i, ok)
	}
}

func TestValidateAcceptsMatchingArgs(t *testing.T) {
	testlog.Start(t)
	m, _ := Lookup("basic.publish")
	if err := Validate(m, publishArgs()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateArgumentCount(t *testing.T) {
	testlog.Start(t)
	m, _ := Lookup("basic.publish")
	err := Validate(m, publishArgs()[:4])
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Method != "basic.publish" || ve.Param != "" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateTypeMismatchIsDeterministic(t *testing.T) {
	testlog.Start(t)
	m, _ := Lookup("basic.publish")
	args := publishArgs()
	args[2] = LongStrArg("jobs")
	args[3] = ShortArg(1)
	err := Validate(m, args)
	ve, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Param != "routing-key" {
		t.Fatalf("expected first mismatch at routing-key, got %+v", ve)
	}
}

func TestMethodsOrderedByID(t *testing.T) {
	testlog.Start(t)
	ms := Methods()
	if len(ms) == 0 {
		t.Fatalf("empty registry")
	}
	for i := 1; i < len(ms); i++ {
		a, b := ms[i-1], ms[i]
		if a.ClassID > b.ClassID || (a.ClassID == b.ClassID && a.MethodID >= b.MethodID) {
			t.Fatalf("%s listed before %s", a.Name, b.Name)
		}
	}
	if ms[0].Name != "connection.start-ok" {
		t.Fatalf("expected connection.start-ok first, got %s", ms[0].Name)
	}
}

func TestParseArgType(t *testing.T) {
	testlog.Start(t)
	for typ, name := range argTypeNames {
		got, ok := ParseArgType(name)
		if !ok || got != typ {
			t.Fatalf("ParseArgType(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := ParseArgType("uuid"); ok {
		t.Fatalf("expected unknown domain to be rejected")
	}
}

func TestSchemaSourceIsFormatted(t *testing.T) {
	testlog.Start(t)
	src, err := os.ReadFile("schema.go")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.Equal(src, formatted) {
		t.Fatalf("schema.go is not gofmt formatted")
	}
}
