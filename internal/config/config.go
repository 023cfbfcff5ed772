// Package config gathers run settings from a .env file, NEARSEG_* variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thomhuang/NearestSegment/internal/index"
	"github.com/thomhuang/NearestSegment/internal/project"
)

const envPrefix = "NEARSEG_"

// Config is the full setting set for a match run.
type Config struct {
	Segments    []string
	Records     string
	Output      string
	XField      string
	YField      string
	SourceCRS   string
	WorkingCRS  string
	Tolerance   float64
	Backend     string
	Workers     int
	OnError     string
	DistanceFld string
	GeodesicFld string
	GeocodeKey  string
	GeocodeRate float64
	GeocodeCity string
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		XField:      project.DefaultXField,
		YField:      project.DefaultYField,
		SourceCRS:   string(project.WGS84),
		WorkingCRS:  string(project.WebMercator),
		Tolerance:   20,
		Backend:     string(index.BackendRTree),
		Workers:     runtime.NumCPU(),
		OnError:     project.PolicySkip.String(),
		GeocodeRate: 10,
	}
}

// LoadEnv reads .env files into the process environment. Missing files
// are not an error; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not read %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv overlays NEARSEG_* variables on c. lookupEnv defaults to
// os.LookupEnv.
func (c *Config) FromEnv(lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	get := func(k string) string {
		v, _ := lookupEnv(envPrefix + k)
		return strings.TrimSpace(v)
	}

	if v := get("SEGMENTS"); v != "" {
		c.Segments = splitList(v)
	}
	setString(&c.Records, get("RECORDS"))
	setString(&c.Output, get("OUTPUT"))
	setString(&c.XField, get("X_FIELD"))
	setString(&c.YField, get("Y_FIELD"))
	setString(&c.WorkingCRS, get("WORKING_CRS"))
	setString(&c.Backend, get("INDEX"))
	setString(&c.OnError, get("ON_ERROR"))
	setString(&c.DistanceFld, get("DISTANCE_FIELD"))
	setString(&c.GeodesicFld, get("GEODESIC_FIELD"))
	setString(&c.GeocodeKey, get("GEOCODE_KEY"))
	setString(&c.GeocodeCity, get("GEOCODE_CITY"))
	// an explicitly empty source CRS turns reprojection off
	if v, ok := lookupEnv(envPrefix + "SOURCE_CRS"); ok {
		c.SourceCRS = strings.TrimSpace(v)
	}

	if v := get("TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sTOLERANCE: %w", envPrefix, err)
		}
		c.Tolerance = f
	}
	if v := get("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
		c.Workers = n
	}
	if v := get("GEOCODE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sGEOCODE_RATE: %w", envPrefix, err)
		}
		c.GeocodeRate = f
	}
	return nil
}

// RegisterFlags binds flags to c, using the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	// the first -segments replaces sources from the environment, later ones add
	segmentsSet := false
	fs.Func("segments", "segment source (.shp, .geojson, .csv); repeat or comma-separate", func(s string) error {
		if !segmentsSet {
			c.Segments = nil
			segmentsSet = true
		}
		c.Segments = append(c.Segments, splitList(s)...)
		return nil
	})
	fs.StringVar(&c.Records, "records", c.Records, "CSV of point records")
	fs.StringVar(&c.Output, "out", c.Output, "output path (.geojson, .csv, .shp)")
	fs.StringVar(&c.XField, "x", c.XField, "x coordinate field")
	fs.StringVar(&c.YField, "y", c.YField, "y coordinate field")
	fs.StringVar(&c.SourceCRS, "source-crs", c.SourceCRS, "CRS of the record coordinates; empty if already in the working CRS")
	fs.StringVar(&c.WorkingCRS, "crs", c.WorkingCRS, "working CRS of the segments")
	fs.Float64Var(&c.Tolerance, "tolerance", c.Tolerance, "search radius in working CRS units")
	fs.StringVar(&c.Backend, "index", c.Backend, "index backend: rtreego or tidwall")
	fs.IntVar(&c.Workers, "workers", c.Workers, "match workers")
	fs.StringVar(&c.OnError, "on-error", c.OnError, "per-record reprojection failures: skip or abort")
	fs.StringVar(&c.DistanceFld, "distance-field", c.DistanceFld, "also write the matched distance to this field")
	fs.StringVar(&c.GeodesicFld, "km-field", c.GeodesicFld, "also write the great-circle distance in km to this field")
	fs.StringVar(&c.GeocodeKey, "geocode-key", c.GeocodeKey, "geocoding API key")
	fs.Float64Var(&c.GeocodeRate, "geocode-rate", c.GeocodeRate, "geocoding calls per second")
	fs.StringVar(&c.GeocodeCity, "city", c.GeocodeCity, "city appended to ATR addresses")
}

// Validate checks the settings a match run needs.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Segments) == 0 {
		errs = append(errs, errors.New("no segment sources"))
	}
	if c.Records == "" {
		errs = append(errs, errors.New("no records file"))
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %v", c.Tolerance))
	}
	if _, err := index.ParseBackend(c.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := project.ParsePolicy(c.OnError); err != nil {
		errs = append(errs, err)
	}
	if _, err := project.ParseCRS(c.WorkingCRS); err != nil {
		errs = append(errs, err)
	}
	if c.SourceCRS != "" {
		if _, err := project.ParseCRS(c.SourceCRS); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
