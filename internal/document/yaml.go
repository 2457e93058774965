package document

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func parseYAML(data []byte) (fields, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml decode failed: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return fields{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return fields{}, nil
	}
	v, err := yamlValue(root)
	if err != nil {
		return nil, err
	}
	out, ok := v.(fields)
	if !ok {
		return nil, fmt.Errorf("yaml document must be a mapping, got %s", describe(v))
	}
	return out, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		out := make(fields, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if _, dup := out.get(k.Value); dup {
				return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
			}
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, field{key: k.Value, val: v})
		}
		return out, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

func yamlScalar(n *yaml.Node) (any, error) {
	var (
		out any
		err error
	)
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err = n.Decode(&b)
		out = b
	case "!!int":
		var i int64
		err = n.Decode(&i)
		out = i
	case "!!float":
		var f float64
		err = n.Decode(&f)
		out = f
	case "!!timestamp":
		var t time.Time
		err = n.Decode(&t)
		out = t
	case "!!binary":
		var b []byte
		b, err = base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		out = b
	default:
		out = n.Value
	}
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return out, nil
}
