// Package document loads method call descriptions from TOML or YAML files
// and converts them into encodable method calls and field tables.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/amqpwire/internal/protocol"
	"github.com/danmuck/amqpwire/internal/protocol/method"
	"github.com/danmuck/amqpwire/internal/protocol/schema"
	"github.com/rs/zerolog/log"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Top-level document keys.
const (
	keyMethod = "method"
	keyArgs   = "args"
	keyTable  = "table"
)

var ErrNoTable = errors.New("document has no table")

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown document format %q", raw)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer document format of %s", path)
	}
	return ParseFormat(ext)
}

// Document is a parsed method call description. Argument and table
// entries keep the order they had in the source file.
type Document struct {
	Method string

	args     fields
	table    fields
	hasTable bool
}

// Load reads and parses path. An empty format is inferred from the
// extension.
func Load(path string, format Format) (*Document, error) {
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document load failed (%s): %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("document parse failed (%s): %w", path, err)
	}
	log.Debug().Str("path", path).Str("format", string(format)).Str("method", doc.Method).Msg("document.Load")
	return doc, nil
}

func Parse(data []byte, format Format) (*Document, error) {
	var (
		root fields
		err  error
	)
	switch format {
	case FormatTOML:
		root, err = parseTOML(data)
	case FormatYAML:
		root, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return fromFields(root)
}

func fromFields(root fields) (*Document, error) {
	doc := &Document{}
	for _, f := range root {
		switch f.key {
		case keyMethod:
			name, ok := f.val.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected string, got %s", keyMethod, describe(f.val))
			}
			doc.Method = name
		case keyArgs:
			args, ok := f.val.(fields)
			if !ok {
				return nil, fmt.Errorf("%s: expected table, got %s", keyArgs, describe(f.val))
			}
			doc.args = args
		case keyTable:
			table, ok := f.val.(fields)
			if !ok {
				return nil, fmt.Errorf("%s: expected table, got %s", keyTable, describe(f.val))
			}
			doc.table = table
			doc.hasTable = true
		default:
			return nil, fmt.Errorf("unknown document key %q", f.key)
		}
	}
	return doc, nil
}

// Call resolves the method signature and converts the arguments in the
// order the signature declares them. Parameters the document leaves out
// take their zero value.
func (d *Document) Call() (method.Call, error) {
	if d.Method == "" {
		return method.Call{}, fmt.Errorf("document has no %s", keyMethod)
	}
	m, ok := schema.Lookup(d.Method)
	if !ok {
		return method.Call{}, fmt.Errorf("unknown method %q", d.Method)
	}
	for _, f := range d.args {
		if _, ok := m.Param(f.key); !ok {
			return method.Call{}, fmt.Errorf("%s.%s: not a parameter of %s", keyArgs, f.key, m.Name)
		}
	}
	out := make([]schema.Arg, len(m.Params))
	for i, p := range m.Params {
		raw, ok := d.args.get(p.Name)
		if !ok {
			out[i] = schema.Arg{Type: p.Type}
			continue
		}
		arg, err := toArg(p, raw)
		if err != nil {
			return method.Call{}, fmt.Errorf("%s.%s: %w", keyArgs, p.Name, err)
		}
		out[i] = arg
	}
	return method.Call{Method: m, Args: out}, nil
}

// Table returns the document's [table] section or, when there is none,
// the first table argument of the method that the document sets.
func (d *Document) Table() (protocol.Table, error) {
	if d.hasTable {
		t, err := toTable(d.table)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyTable, err)
		}
		return t, nil
	}
	m, ok := schema.Lookup(d.Method)
	if !ok {
		return nil, ErrNoTable
	}
	for _, p := range m.Params {
		if p.Type != schema.TypeTable {
			continue
		}
		raw, ok := d.args.get(p.Name)
		if !ok {
			continue
		}
		arg, err := toArg(p, raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", keyArgs, p.Name, err)
		}
		return arg.Table, nil
	}
	return nil, ErrNoTable
}
