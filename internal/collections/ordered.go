package collections

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a string-keyed map that remembers insertion order.
// Setting an existing key replaces its value but keeps its original position.
// The zero value is ready to use.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap creates an empty OrderedMap
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set stores v under k
func (m *OrderedMap[V]) Set(k string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, exists := m.values[k]; !exists {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k
func (m *OrderedMap[V]) Get(k string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k is present
func (m *OrderedMap[V]) Has(k string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[k]
	return ok
}

// Len returns the number of entries
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates over the entries in insertion order
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the map as a JSON object, preserving order
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving the order of its keys
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	*m = OrderedMap[V]{values: make(map[string]V)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("failed to decode %q: %w", key, err)
		}
		m.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the map as a YAML mapping, preserving order
func (m *OrderedMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range m.All() {
		var value yaml.Node
		if err := value.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping, preserving the order of its keys
func (m *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	*m = OrderedMap[V]{values: make(map[string]V)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v V
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("failed to decode %q: %w", node.Content[i].Value, err)
		}
		m.Set(node.Content[i].Value, v)
	}
	return nil
}
