package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData marks a recording shorter than one window.
	ErrInsufficientData = errors.New("dataset: recording shorter than one window")
	// ErrWindowComputation marks a failed window. It is matched by
	// errors.Is on every *WindowError.
	ErrWindowComputation = errors.New("dataset: window computation failed")
	// ErrEmptyDataset is returned when no sample survives a build.
	ErrEmptyDataset = errors.New("dataset: no samples")
	// ErrWindowLength is returned by Preprocess for recordings that are not
	// exactly one window long.
	ErrWindowLength = errors.New("dataset: recording length does not match window size")
	// ErrAxisLength marks a recording whose axes differ in length.
	ErrAxisLength = errors.New("dataset: axis length mismatch")
)

// SkipError describes a recording that contributed no windows.
type SkipError struct {
	Source string
	Rows   int
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("dataset: skip %q (%d rows): %v", e.Source, e.Rows, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// WindowError describes one dropped window. Axis is -1 when the failure is
// not attributable to a single axis.
type WindowError struct {
	Source string
	Window int
	Axis   int
	Err    error
}

func (e *WindowError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("dataset: %q window %d: %v", e.Source, e.Window, e.Err)
	}
	return fmt.Sprintf("dataset: %q window %d axis %d: %v", e.Source, e.Window, e.Axis, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }

// Is reports whether target is ErrWindowComputation.
func (e *WindowError) Is(target error) bool {
	return target == ErrWindowComputation
}
