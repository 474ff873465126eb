package webapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Params is an insertion-ordered set of query parameters. Setting a name that
// is already present replaces its value without moving it. The zero value and
// a nil *Params are both usable as an empty set for reads.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams builds a Params from alternating name/value pairs. A trailing
// name without a value is set to "".
func NewParams(pairs ...any) *Params {
	p := &Params{}
	for i := 0; i < len(pairs); i += 2 {
		var value any = ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		p.Set(cast.ToString(pairs[i]), value)
	}
	return p
}

// Set stores value under key, converting it to its string form.
func (p *Params) Set(key string, value any) *Params {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = stringify(value)
	return p
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (string, bool) {
	if p == nil || p.values == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Del removes key, keeping the order of the remaining entries.
func (p *Params) Del(key string) {
	if p == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Clone returns an independent copy; cloning nil yields an empty set.
func (p *Params) Clone() *Params {
	out := &Params{values: make(map[string]string, p.Len())}
	if p == nil {
		return out
	}
	out.keys = append(out.keys, p.keys...)
	for k, v := range p.values {
		out.values[k] = v
	}
	return out
}

// Encode serializes the set as name=value pairs joined by '&'. Names and
// values are written verbatim; nothing is percent-encoded.
func (p *Params) Encode() string {
	if p.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p.values[k])
	}
	return b.String()
}

// UnmarshalYAML decodes a mapping of scalars, keeping document order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("params: expected a mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("params: value of %q must be a scalar", key.Value)
		}
		if val.Tag == "!!null" {
			p.Set(key.Value, "")
			continue
		}
		p.Set(key.Value, val.Value)
	}
	return nil
}

// UnmarshalJSON decodes an object, keeping document order. String values are
// unquoted; any other value keeps its compact JSON text.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("params: expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("params: %w", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("params: value of %q: %w", key, err)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			p.Set(key, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("params: value of %q: %w", key, err)
		}
		if buf.String() == "null" {
			p.Set(key, "")
			continue
		}
		p.Set(key, buf.String())
	}
	return nil
}

// MarshalJSON encodes the set as a JSON object in insertion order.
func (p *Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func stringify(value any) string {
	if s, err := cast.ToStringE(value); err == nil {
		return s
	}
	return fmt.Sprint(value)
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "mapping"
	}
}
