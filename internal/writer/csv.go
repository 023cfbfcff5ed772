package writer

import (
	"encoding/csv"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/thomhuang/NearestSegment/internal/feature"
)

// WKTColumn is the name of the geometry column written by CSVSink.
const WKTColumn = "WKT"

// CSVSink writes one row per feature: the schema's fields in order followed
// by the geometry as WKT.
type CSVSink struct {
	name   string
	w      *csv.Writer
	closer io.Closer
	fields []Field
}

// NewCSVSink writes to w. If w is an io.Closer it is closed by Close.
func NewCSVSink(name string, w io.Writer) *CSVSink {
	s := &CSVSink{name: name, w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *CSVSink) Name() string { return s.name }

func (s *CSVSink) Begin(schema Schema) error {
	s.fields = schema.Properties
	header := make([]string, 0, len(s.fields)+1)
	for _, f := range s.fields {
		header = append(header, f.Name)
	}
	return s.w.Write(append(header, WKTColumn))
}

func (s *CSVSink) WriteFeature(g orb.Geometry, props *feature.Properties) error {
	row := make([]string, 0, len(s.fields)+1)
	for _, f := range s.fields {
		row = append(row, props.String(f.Name))
	}
	return s.w.Write(append(row, wkt.MarshalString(g)))
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
