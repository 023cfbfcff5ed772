package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/thomhuang/NearestSegment/internal/feature"
)

// dBase limits field names to 10 characters.
const maxFieldName = 10

// ShapefileSink writes an ESRI shapefile. Point schemas give a POINT file,
// LineString and MultiLineString schemas a POLYLINE file. Field names are cut
// to the dBase limit; two fields that end up with the same name are rejected.
//
// go-shp reports no errors from individual shape writes or from closing the
// writer, so Close only checks that the .shp, .shx and .dbf files exist.
type ShapefileSink struct {
	Path string

	w      *shp.Writer
	base   string
	fields []Field
}

func (s *ShapefileSink) Name() string { return s.Path }

func (s *ShapefileSink) Begin(schema Schema) error {
	var shapeType shp.ShapeType
	switch schema.Geometry {
	case "Point":
		shapeType = shp.POINT
	case "LineString", "MultiLineString":
		shapeType = shp.POLYLINE
	default:
		return fmt.Errorf("%w: shapefile cannot hold %q geometries", ErrSchemaMismatch, schema.Geometry)
	}

	fields, err := dbfFields(schema.Properties)
	if err != nil {
		return err
	}

	s.base = strings.TrimSuffix(s.Path, filepath.Ext(s.Path))
	w, err := shp.Create(s.base+".shp", shapeType)
	if err != nil {
		return err
	}
	s.w = w
	s.fields = schema.Properties
	return s.w.SetFields(fields)
}

func dbfFields(props []Field) ([]shp.Field, error) {
	fields := make([]shp.Field, 0, len(props))
	seen := make(map[string]string, len(props))
	for _, f := range props {
		name := f.Name
		if len(name) > maxFieldName {
			name = name[:maxFieldName]
		}
		key := strings.ToUpper(name)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: fields %q and %q share the dBase name %q", ErrSchemaMismatch, prev, f.Name, name)
		}
		seen[key] = f.Name

		switch f.Type {
		case TypeInt:
			fields = append(fields, shp.NumberField(name, 18))
		case TypeFloat:
			fields = append(fields, shp.FloatField(name, 24, 8))
		default:
			fields = append(fields, shp.StringField(name, 254))
		}
	}
	return fields, nil
}

func (s *ShapefileSink) WriteFeature(g orb.Geometry, props *feature.Properties) error {
	shape, err := toShape(g)
	if err != nil {
		return err
	}
	row := int(s.w.Write(shape))

	for i, f := range s.fields {
		v, _ := props.Get(f.Name)
		if err := s.w.WriteAttribute(row, i, attributeValue(f.Type, v)); err != nil {
			return err
		}
	}
	return nil
}

func (s *ShapefileSink) Close() error {
	if s.w == nil {
		return nil
	}
	s.w.Close()
	s.w = nil

	// go-shp v0.1.1 names the attribute table "<base>dbf"
	if _, err := os.Stat(s.base + "dbf"); err == nil {
		if err := os.Rename(s.base+"dbf", s.base+".dbf"); err != nil {
			return err
		}
	}
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		if _, err := os.Stat(s.base + ext); err != nil {
			return fmt.Errorf("shapefile incomplete: %w", err)
		}
	}
	return nil
}

func toShape(g orb.Geometry) (shp.Shape, error) {
	switch g := g.(type) {
	case orb.Point:
		return &shp.Point{X: g[0], Y: g[1]}, nil
	case orb.LineString:
		return shp.NewPolyLine([][]shp.Point{toShpPoints(g)}), nil
	case orb.MultiLineString:
		parts := make([][]shp.Point, 0, len(g))
		for _, ls := range g {
			parts = append(parts, toShpPoints(ls))
		}
		return shp.NewPolyLine(parts), nil
	default:
		return nil, fmt.Errorf("%w: shapefile cannot hold %s", ErrSchemaMismatch, g.GeoJSONType())
	}
}

func toShpPoints(ls orb.LineString) []shp.Point {
	pts := make([]shp.Point, len(ls))
	for i, p := range ls {
		pts[i] = shp.Point{X: p[0], Y: p[1]}
	}
	return pts
}

// attributeValue converts v to one of the types go-shp can encode.
func attributeValue(t FieldType, v any) any {
	if v == nil {
		return ""
	}
	switch t {
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case int32:
			return int(n)
		}
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		}
	}
	return feature.FormatValue(v)
}
