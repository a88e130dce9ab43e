// internal/types/errors.go
package types

import "errors"

// Sentinel errors for the segmentation core. Callers classify failures with
// errors.Is; wrapped I/O errors carry their own context and match none of
// these.
var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrFileTooLarge   = errors.New("file exceeds maximum size")
	ErrParseTimeout   = errors.New("parse timed out")
	ErrInvalidSegment = errors.New("invalid segment")
	ErrOverlap        = errors.New("segments overlap")
	ErrNotFound       = errors.New("not found")
)
