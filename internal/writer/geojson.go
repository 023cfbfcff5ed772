package writer

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/thomhuang/NearestSegment/internal/feature"
)

// GeoJSONSink writes a FeatureCollection one feature at a time, so the
// collection is never held in memory.
type GeoJSONSink struct {
	name   string
	buf    *bufio.Writer
	closer io.Closer
	count  int
}

// NewGeoJSONSink writes to w. If w is an io.Closer it is closed by Close.
func NewGeoJSONSink(name string, w io.Writer) *GeoJSONSink {
	s := &GeoJSONSink{name: name, buf: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *GeoJSONSink) Name() string { return s.name }

func (s *GeoJSONSink) Begin(Schema) error {
	_, err := s.buf.WriteString(`{"type":"FeatureCollection","features":[`)
	return err
}

func (s *GeoJSONSink) WriteFeature(g orb.Geometry, props *feature.Properties) error {
	f := geojson.NewFeature(g)
	f.Properties = geojson.Properties(props.Map())

	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if s.count > 0 {
		if err := s.buf.WriteByte(','); err != nil {
			return err
		}
	}
	s.count++
	_, err = s.buf.Write(data)
	return err
}

// Close terminates the collection even after a failed write, so the output
// stays valid JSON up to the last complete feature.
func (s *GeoJSONSink) Close() error {
	_, err := s.buf.WriteString("]}\n")
	if ferr := s.buf.Flush(); err == nil {
		err = ferr
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
