// internal/types/ids.go
package types

import "github.com/google/uuid"

type SequenceID string
type SegmentID string

// IDGenerator produces sequence and segment identifiers. The store takes one
// as a dependency so tests can supply deterministic ids.
type IDGenerator interface {
	NewSequenceID() SequenceID
	NewSegmentID() SegmentID
}

// UUIDGenerator is the default IDGenerator, backed by random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewSequenceID() SequenceID { return NewSequenceID() }
func (UUIDGenerator) NewSegmentID() SegmentID   { return NewSegmentID() }

func NewSequenceID() SequenceID {
	return SequenceID(uuid.New().String())
}

func NewSegmentID() SegmentID {
	return SegmentID(uuid.New().String())
}
