// Package writer streams geometries with attributes to vector outputs.
package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"github.com/thomhuang/NearestSegment/internal/feature"
)

var (
	// ErrSchemaMismatch is returned when a feature does not conform to the
	// schema it is written with.
	ErrSchemaMismatch = errors.New("feature does not match schema")
	// ErrUnsupportedFormat is returned by Create for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// WriteError reports a failed write. Index is the position of the offending
// item in the input, or -1 when the destination itself failed. Features
// written before the failure stay written.
type WriteError struct {
	Destination string
	Index       int
	cause       error
}

func (e *WriteError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("write %s: %v", e.Destination, e.cause)
	}
	return fmt.Sprintf("write %s: item %d: %v", e.Destination, e.Index, e.cause)
}

func (e *WriteError) Unwrap() error { return e.cause }

// Sink receives features one at a time.
type Sink interface {
	Name() string
	Begin(schema Schema) error
	WriteFeature(g orb.Geometry, props *feature.Properties) error
	Close() error
}

// Create opens a sink for path chosen by its extension.
func Create(path string) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return &ShapefileSink{Path: path}, nil
	case ".geojson", ".json":
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return NewGeoJSONSink(path, f), nil
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return NewCSVSink(path, f), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Write creates the destination and writes every item of data to it. The
// accessors pull geometry and attributes out of each item, so data can be of
// any shape.
func Write[T any](schema Schema, dest string, data []T, geom func(T) orb.Geometry, props func(T) *feature.Properties) error {
	sink, err := Create(dest)
	if err != nil {
		return &WriteError{Destination: dest, Index: -1, cause: err}
	}
	return WriteTo(schema, sink, data, geom, props)
}

// WriteTo writes data to an already created sink and closes it.
func WriteTo[T any](schema Schema, sink Sink, data []T, geom func(T) orb.Geometry, props func(T) *feature.Properties) (err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = &WriteError{Destination: sink.Name(), Index: -1, cause: cerr}
		}
	}()

	if err := sink.Begin(schema); err != nil {
		return &WriteError{Destination: sink.Name(), Index: -1, cause: err}
	}
	for i, item := range data {
		g, p := geom(item), props(item)
		if err := schema.check(g, p); err != nil {
			return &WriteError{Destination: sink.Name(), Index: i, cause: err}
		}
		if err := sink.WriteFeature(g, p); err != nil {
			return &WriteError{Destination: sink.Name(), Index: i, cause: err}
		}
	}
	return nil
}

// RecordGeometry and RecordProperties are accessors for point records.
func RecordGeometry(r *feature.Record) orb.Geometry { return r.Point }
func RecordProperties(r *feature.Record) *feature.Properties { return r.Properties }

// SegmentGeometry and SegmentProperties are accessors for segments.
func SegmentGeometry(s feature.Segment) orb.Geometry { return s.Geometry }
func SegmentProperties(s feature.Segment) *feature.Properties { return s.Properties }
