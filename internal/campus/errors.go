package campus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRoute is returned when the path finder yields no path between two
	// nodes. The map is not fully connected and the run cannot continue.
	ErrNoRoute = errors.New("campus: no route between nodes")
	// ErrInvalidStatus marks a clock status outside Future/Active/Past.
	ErrInvalidStatus = errors.New("campus: invalid schedule status")
	// ErrUnknownEntity is returned for ids that were never spawned in this run.
	ErrUnknownEntity = errors.New("campus: unknown entity")
	// ErrNoStartNodes is returned when no graph node carries the start tag.
	ErrNoStartNodes = errors.New("campus: no start nodes")
)

// ParseErrorKind classifies room description failures.
type ParseErrorKind string

const (
	MalformedMetadata ParseErrorKind = "malformed metadata"
	MalformedGeometry ParseErrorKind = "malformed geometry"
	UnrecognizedLine  ParseErrorKind = "unrecognized line"
)

// ParseError reports the offending text of a room description.
type ParseError struct {
	Kind ParseErrorKind
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("room description line %d: %s: %q", e.Line, e.Kind, e.Text)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// CapacityError is returned when no room of the requested types had a free
// seat within the draw limit.
type CapacityError struct {
	Types    []RoomType
	Capacity int
	Bucket   float64
	Attempts int
}

func (e *CapacityError) Error() string {
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = t.String()
	}
	return fmt.Sprintf("campus: no free seat in [%s] (aggregate capacity %d) at step %.1f after %d draws",
		strings.Join(names, ","), e.Capacity, e.Bucket, e.Attempts)
}
