package writer

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/thomhuang/NearestSegment/internal/feature"
)

type FieldType string

const (
	TypeString FieldType = "str"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
)

type Field struct {
	Name string
	Type FieldType
}

// Schema describes the features of one output. Geometry is a GeoJSON type
// name; "" or "Any" accepts every geometry. A single-part type also accepts
// its multi-part form.
type Schema struct {
	Geometry   string
	Properties []Field
}

// InferSchema derives a schema from a sample of attributes: float and
// integer values give numeric fields, everything else is text.
func InferSchema(geometry string, sample *feature.Properties) Schema {
	s := Schema{Geometry: geometry}
	for _, k := range sample.Keys() {
		v, _ := sample.Get(k)
		s.Properties = append(s.Properties, Field{Name: k, Type: typeOf(v)})
	}
	return s
}

func typeOf(v any) FieldType {
	switch v.(type) {
	case float32, float64:
		return TypeFloat
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	default:
		return TypeString
	}
}

func (s Schema) check(g orb.Geometry, props *feature.Properties) error {
	if g == nil {
		return fmt.Errorf("%w: nil geometry", ErrSchemaMismatch)
	}
	if !geometryConforms(s.Geometry, g.GeoJSONType()) {
		return fmt.Errorf("%w: geometry %s, schema %s", ErrSchemaMismatch, g.GeoJSONType(), s.Geometry)
	}

	if props.Len() != len(s.Properties) {
		return fmt.Errorf("%w: %d fields, schema has %d", ErrSchemaMismatch, props.Len(), len(s.Properties))
	}
	for _, f := range s.Properties {
		v, ok := props.Get(f.Name)
		if !ok {
			return fmt.Errorf("%w: missing field %q", ErrSchemaMismatch, f.Name)
		}
		if !valueConforms(f.Type, v) {
			return fmt.Errorf("%w: field %q is %T, schema wants %s", ErrSchemaMismatch, f.Name, v, f.Type)
		}
	}
	return nil
}

func geometryConforms(want, got string) bool {
	if want == "" || strings.EqualFold(want, "Any") {
		return true
	}
	return strings.TrimPrefix(want, "Multi") == strings.TrimPrefix(got, "Multi")
}

func valueConforms(t FieldType, v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeInt:
		return typeOf(v) == TypeInt
	case TypeFloat:
		vt := typeOf(v)
		return vt == TypeFloat || vt == TypeInt
	default:
		return false
	}
}
