package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by any operation on a surface after Close.
	ErrClosed = errors.New("canvas: surface closed")

	// ErrInvalidColor is returned when a color string cannot be parsed.
	ErrInvalidColor = errors.New("canvas: invalid color")

	// ErrBadSnapshot is returned by Restore for snapshots it cannot load.
	ErrBadSnapshot = errors.New("canvas: bad snapshot")
)

// DecodeError reports an uploaded image that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("canvas: decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ExportError reports a failed image export.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("canvas: export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
