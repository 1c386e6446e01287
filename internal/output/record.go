package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is one named value of a record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of fields, rendered as one row or object.
type Record []Field

// F is shorthand for a Field literal.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the record as an object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the record as a mapping with keys in field order.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r {
		value := &yaml.Node{}
		if err := value.Encode(yamlValue(f.Value)); err != nil {
			return nil, fmt.Errorf("encode field %q: %w", f.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			value,
		)
	}
	return node, nil
}

// yamlValue turns raw JSON into plain values so it renders as a tree.
func yamlValue(v any) any {
	raw, ok := v.(json.RawMessage)
	if !ok {
		return v
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}

// columns returns every field name in first-seen order.
func columns(records []Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		for _, f := range r {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			names = append(names, f.Name)
		}
	}
	return names
}

// cell formats a value for tabular output.
func cell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		return strings.Join(value, ", ")
	case fmt.Stringer:
		return value.String()
	case json.RawMessage:
		return string(value)
	default:
		return fmt.Sprint(value)
	}
}
