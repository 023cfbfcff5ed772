package project

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/thomhuang/NearestSegment/internal/feature"
	"github.com/thomhuang/NearestSegment/internal/logging"
)

const (
	DefaultXField = "X"
	DefaultYField = "Y"
)

// Policy decides what ProjectAll does with a record whose coordinates cannot
// be projected.
type Policy int

const (
	// PolicySkip logs a warning and drops the record.
	PolicySkip Policy = iota
	// PolicyAbort stops at the first failing record.
	PolicyAbort
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return 0, fmt.Errorf("unknown reprojection policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "skip"
}

// Projector reads two coordinate fields from raw rows and builds point
// records in WorkingCRS. When SourceCRS is empty the coordinates are taken to
// be in the working system already.
type Projector struct {
	XField     string
	YField     string
	SourceCRS  CRS
	WorkingCRS CRS
	OnError    Policy
	Logger     *logging.Logger
}

// Project builds the record for raw. A blank or missing coordinate field
// drops the row: ok is false and err is nil. The raw properties become the
// record's properties as they are, without a copy.
func (p *Projector) Project(raw *feature.Properties) (*feature.Record, bool, error) {
	xs := strings.TrimSpace(raw.String(p.xField()))
	ys := strings.TrimSpace(raw.String(p.yField()))
	if xs == "" || ys == "" {
		return nil, false, nil
	}

	x, errX := strconv.ParseFloat(xs, 64)
	y, errY := strconv.ParseFloat(ys, 64)
	if errX != nil || errY != nil {
		return nil, false, &ReprojectionError{
			From:  p.SourceCRS,
			To:    p.WorkingCRS,
			X:     parsedOrNaN(x, errX),
			Y:     parsedOrNaN(y, errY),
			cause: fmt.Errorf("%w: %q, %q", ErrInvalidCoordinate, xs, ys),
		}
	}

	if p.SourceCRS != "" {
		var err error
		x, y, err = Reproject(x, y, p.SourceCRS, p.WorkingCRS)
		if err != nil {
			return nil, false, err
		}
	}

	return feature.NewRecord(orb.Point{x, y}, raw), true, nil
}

// ProjectAll projects every row, dropping blank-coordinate rows and applying
// OnError to rows that fail to project.
func (p *Projector) ProjectAll(ctx context.Context, rows []*feature.Properties) ([]*feature.Record, error) {
	log := p.Logger
	if log == nil {
		log = logging.Noop()
	}

	records := make([]*feature.Record, 0, len(rows))
	dropped := 0
	for i, raw := range rows {
		rec, ok, err := p.Project(raw)
		if err != nil {
			if p.OnError == PolicyAbort {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			log.LogSkip(ctx, i+1, err)
			continue
		}
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		log.DebugContext(ctx, "rows without coordinates dropped", "count", dropped)
	}
	return records, nil
}

func (p *Projector) xField() string {
	if p.XField == "" {
		return DefaultXField
	}
	return p.XField
}

func (p *Projector) yField() string {
	if p.YField == "" {
		return DefaultYField
	}
	return p.YField
}

func parsedOrNaN(v float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}
