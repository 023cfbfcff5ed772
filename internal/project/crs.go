// Package project turns raw tabular rows into point records in the working
// coordinate system.
package project

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// CRS is a coordinate reference system identifier such as "EPSG:4326".
type CRS string

const (
	// WGS84 is longitude/latitude in degrees.
	WGS84 CRS = "EPSG:4326"
	// WebMercator is spherical mercator in meters.
	WebMercator CRS = "EPSG:3857"
)

// maxMercatorLat is the latitude at which web mercator y reaches the same
// magnitude as x at the antimeridian.
const maxMercatorLat = 85.0511287798066

// mercatorExtent is half the width of the web mercator plane in meters.
const mercatorExtent = 20037508.342789244

var (
	ErrUnsupportedCRS    = errors.New("unsupported coordinate reference system")
	ErrOutOfDomain       = errors.New("coordinate outside the projection domain")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

var crsAliases = map[string]CRS{
	"EPSG:4326":   WGS84,
	"WGS84":       WGS84,
	"EPSG:3857":   WebMercator,
	"EPSG:900913": WebMercator,
	"EPSG:3785":   WebMercator,
}

// ParseCRS normalizes an identifier. Matching ignores case and a leading
// "+init=" as written by proj4 strings.
func ParseCRS(s string) (CRS, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.TrimPrefix(key, "+INIT=")
	if c, ok := crsAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCRS, s)
}

// ReprojectionError reports a coordinate pair that could not be moved
// between two reference systems.
type ReprojectionError struct {
	From, To CRS
	X, Y     float64
	cause    error
}

func (e *ReprojectionError) Error() string {
	return fmt.Sprintf("reproject (%g, %g) from %s to %s: %v", e.X, e.Y, e.From, e.To, e.cause)
}

func (e *ReprojectionError) Unwrap() error { return e.cause }

// Reproject moves (x, y) from one reference system to another. For WGS84, x
// is longitude and y is latitude.
func Reproject(x, y float64, from, to CRS) (float64, float64, error) {
	fail := func(err error) (float64, float64, error) {
		return 0, 0, &ReprojectionError{From: from, To: to, X: x, Y: y, cause: err}
	}

	src, err := ParseCRS(string(from))
	if err != nil {
		return fail(err)
	}
	dst, err := ParseCRS(string(to))
	if err != nil {
		return fail(err)
	}
	if !finite(x) || !finite(y) {
		return fail(ErrInvalidCoordinate)
	}
	if src == dst {
		return x, y, nil
	}

	var p orb.Point
	switch src {
	case WGS84:
		if math.Abs(x) > 180 || math.Abs(y) > maxMercatorLat {
			return fail(ErrOutOfDomain)
		}
		p = project.WGS84.ToMercator(orb.Point{x, y})
	case WebMercator:
		if math.Abs(x) > mercatorExtent*(1+1e-12) || math.Abs(y) > mercatorExtent*(1+1e-12) {
			return fail(ErrOutOfDomain)
		}
		p = project.Mercator.ToWGS84(orb.Point{x, y})
	}
	return p[0], p[1], nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
