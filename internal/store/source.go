package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/thomhuang/NearestSegment/internal/feature"
)

// Source provides segments from one external input. Decoding is entirely the
// source's business; the store only sees geometry and attributes.
type Source interface {
	Name() string
	Segments() ([]feature.Segment, error)
}

// Open picks a source for path by its extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return &ShapefileSource{Path: path}, nil
	case ".geojson", ".json":
		return &GeoJSONSource{Path: path}, nil
	case ".csv":
		return &WKTCSVSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// SliceSource serves segments that are already in memory.
type SliceSource struct {
	Label string
	Items []feature.Segment
}

func (s *SliceSource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}

func (s *SliceSource) Segments() ([]feature.Segment, error) {
	return s.Items, nil
}

// GeoJSONSource reads a FeatureCollection. A feature without an "id" property
// falls back to the feature's top-level id.
type GeoJSONSource struct {
	Path string
}

func (s *GeoJSONSource) Name() string { return s.Path }

func (s *GeoJSONSource) Segments() ([]feature.Segment, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	out := make([]feature.Segment, 0, len(fc.Features))
	for _, f := range fc.Features {
		props := feature.FromMap(f.Properties, nil)
		if !props.Has(feature.IDField) && f.ID != nil {
			props.Set(feature.IDField, f.ID)
		}
		if f.Geometry == nil {
			out = append(out, feature.Segment{Properties: props})
			continue
		}
		out = append(out, feature.NewSegment(f.Geometry, props))
	}
	return out, nil
}

// WKTCSVSource reads a delimited file where one column holds WKT geometry and
// the others are attributes, kept as text in header order.
type WKTCSVSource struct {
	Path   string
	Column string // defaults to "WKT"
}

func (s *WKTCSVSource) Name() string { return s.Path }

func (s *WKTCSVSource) Segments() ([]feature.Segment, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWKTCSV(f, s.column())
}

func (s *WKTCSVSource) column() string {
	if s.Column == "" {
		return "WKT"
	}
	return s.Column
}

func readWKTCSV(r io.Reader, column string) ([]feature.Segment, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	geomIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			geomIdx = i
			break
		}
	}
	if geomIdx < 0 {
		return nil, fmt.Errorf("no %q column in header", column)
	}

	var out []feature.Segment
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		props := feature.NewProperties()
		for i, h := range header {
			if i == geomIdx {
				continue
			}
			props.Set(h, rec[i])
		}

		if strings.TrimSpace(rec[geomIdx]) == "" {
			out = append(out, feature.Segment{Properties: props})
			continue
		}
		g, err := wkt.Unmarshal(rec[geomIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, feature.NewSegment(g, props))
	}
	return out, nil
}
