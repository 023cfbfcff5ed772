// Package geocode resolves street addresses to coordinates.
package geocode

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when no attempt produced an address.
var ErrNotFound = errors.New("address not found")

// Result is a resolved address. An empty Address means the service had no
// answer.
type Result struct {
	Address string
	Lat     float64
	Lon     float64
}

func (r Result) Found() bool {
	return r.Address != ""
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Result, error)
}

// Retrying asks the inner geocoder again while it returns no address,
// waiting attempt² × Unit between tries. Every call, first tries included,
// waits on Limiter when one is set.
type Retrying struct {
	Inner   Geocoder
	Retries int           // defaults to 3
	Unit    time.Duration // defaults to one second
	Limiter *rate.Limiter
}

// NewRetrying wraps inner with the default schedule and at most perSecond
// calls per second. perSecond <= 0 disables pacing.
func NewRetrying(inner Geocoder, perSecond float64) *Retrying {
	r := &Retrying{Inner: inner}
	if perSecond > 0 {
		r.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return r
}

func (r *Retrying) Geocode(ctx context.Context, address string) (Result, error) {
	retries := r.Retries
	if retries <= 0 {
		retries = 3
	}
	unit := r.Unit
	if unit <= 0 {
		unit = time.Second
	}

	res, err := r.call(ctx, address)
	for attempt := 1; attempt <= retries && err == nil && !res.Found(); attempt++ {
		if err := sleep(ctx, time.Duration(attempt*attempt)*unit); err != nil {
			return Result{}, err
		}
		res, err = r.call(ctx, address)
	}
	if err != nil {
		return Result{}, err
	}
	if !res.Found() {
		return Result{}, ErrNotFound
	}
	return res, nil
}

func (r *Retrying) call(ctx context.Context, address string) (Result, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return Result{}, err
		}
	}
	return r.Inner.Geocode(ctx, address)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
