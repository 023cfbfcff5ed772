package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/thomhuang/NearestSegment/internal/feature"
)

// ShapefileSource reads an ESRI shapefile and its .dbf attributes. Attribute
// values are kept as trimmed text.
type ShapefileSource struct {
	Path string
}

func (s *ShapefileSource) Name() string { return s.Path }

func (s *ShapefileSource) Segments() ([]feature.Segment, error) {
	// go-shp drops the error when the .dbf cannot be opened and reports no
	// fields instead
	dbf := strings.TrimSuffix(s.Path, filepath.Ext(s.Path)) + ".dbf"
	if _, err := os.Stat(dbf); err != nil {
		return nil, fmt.Errorf("attribute table: %w", err)
	}

	r, err := shp.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fields := r.Fields()
	var out []feature.Segment
	for r.Next() {
		n, shape := r.Shape()

		props := feature.NewProperties()
		for i, f := range fields {
			props.Set(f.String(), strings.TrimSpace(r.ReadAttribute(n, i)))
		}

		g, err := shapeToGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", n, err)
		}
		if g == nil {
			out = append(out, feature.Segment{Properties: props})
			continue
		}
		out = append(out, feature.NewSegment(g, props))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func shapeToGeometry(shape shp.Shape) (orb.Geometry, error) {
	switch s := shape.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PolyLine:
		return partsToGeometry(s.Parts, s.Points), nil
	case *shp.PolyLineZ:
		return partsToGeometry(s.Parts, s.Points), nil
	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

// partsToGeometry splits a polyline's flat point list at the part offsets. A
// single part becomes a LineString, several a MultiLineString.
func partsToGeometry(parts []int32, points []shp.Point) orb.Geometry {
	lines := make(orb.MultiLineString, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		ls := make(orb.LineString, 0, end-start)
		for _, p := range points[start:end] {
			ls = append(ls, orb.Point{p.X, p.Y})
		}
		lines = append(lines, ls)
	}
	if len(lines) == 1 {
		return lines[0]
	}
	return lines
}
