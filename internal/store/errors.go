package store

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingID is returned when a segment has no id attribute.
	ErrMissingID = errors.New("segment has no id attribute")
	// ErrDuplicateID is returned when two segments share an id.
	ErrDuplicateID = errors.New("duplicate segment id")
	// ErrNoGeometry is returned for an entry without a geometry.
	ErrNoGeometry = errors.New("segment has no geometry")
	// ErrEmptyGeometry is returned for a geometry without coordinates.
	ErrEmptyGeometry = errors.New("segment geometry is empty")
	// ErrUnsupportedFormat is returned by Open for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported geometry source format")
)

// LoadError reports a geometry source that could not be loaded. Position is
// the entry index within the source, or -1 when the whole source failed.
type LoadError struct {
	Source   string
	Position int
	cause    error
}

func (e *LoadError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("load %s: %v", e.Source, e.cause)
	}
	return fmt.Sprintf("load %s: entry %d: %v", e.Source, e.Position, e.cause)
}

func (e *LoadError) Unwrap() error { return e.cause }

func wrapDuplicate(id, firstSource string) error {
	return fmt.Errorf("%w: %q (first seen in %s)", ErrDuplicateID, id, firstSource)
}
