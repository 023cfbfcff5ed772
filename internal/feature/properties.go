package feature

import (
	"fmt"
	"sort"
	"strconv"
)

// Properties is an ordered attribute mapping. Keys keep the position of their
// first Set; values are opaque except for the few fields read through the
// typed accessors.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties returns an empty mapping.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]any)}
}

// FromPairs builds a mapping from alternating key, value arguments.
func FromPairs(pairs ...any) *Properties {
	p := NewProperties()
	for i := 0; i+1 < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			continue
		}
		p.Set(k, pairs[i+1])
	}
	return p
}

// FromMap builds a mapping from m, ordering keys as given by order. Keys of m
// missing from order are appended sorted.
func FromMap(m map[string]any, order []string) *Properties {
	p := NewProperties()
	for _, k := range order {
		if v, ok := m[k]; ok {
			p.Set(k, v)
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !p.Has(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		p.Set(k, m[k])
	}
	return p
}

func (p *Properties) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *Properties) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

func (p *Properties) Delete(key string) {
	if !p.Has(key) {
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

// Keys returns the keys in insertion order. The slice is a copy.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// String returns the value under key rendered as text. Missing keys and nil
// values render as "".
func (p *Properties) String(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Clone returns a copy; values themselves are shared.
func (p *Properties) Clone() *Properties {
	c := &Properties{
		keys:   p.Keys(),
		values: make(map[string]any, p.Len()),
	}
	for _, k := range c.keys {
		c.values[k] = p.values[k]
	}
	return c
}

// Map returns the attributes as a plain map, losing order.
func (p *Properties) Map() map[string]any {
	m := make(map[string]any, p.Len())
	for _, k := range p.Keys() {
		m[k] = p.values[k]
	}
	return m
}

// ID returns the segment identifier stored under IDField.
func (p *Properties) ID() (string, bool) {
	v, ok := p.Get(IDField)
	if !ok || v == nil {
		return "", false
	}
	return FormatValue(v), true
}

func (p *Properties) NearID() string {
	return p.String(NearIDField)
}

func (p *Properties) SetNearID(id string) {
	p.Set(NearIDField, id)
}

// FormatValue renders an attribute value the way it is written to text
// outputs. Floats use the shortest representation that round-trips.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
