// Package store owns the canonical in-memory index of sequences and
// segments. All mutation follows copy-validate-swap: a candidate sequence is
// built in full, validated against every invariant, and only then swapped in
// and announced. Readers only ever see consistent state and only ever get
// defensive copies.
package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/iPoetDev/browsechat-sub001/internal/events"
	"github.com/iPoetDev/browsechat-sub001/internal/marker"
	"github.com/iPoetDev/browsechat-sub001/internal/parser"
	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

// Store is the session data model for parsed conversation files.
type Store struct {
	engine *parser.Engine
	bus    *events.Bus
	ids    types.IDGenerator

	// mu guards the three maps below. It is scoped to candidate build and
	// swap only; it is never held across parse I/O or event emission.
	mu        sync.RWMutex
	sequences map[types.SequenceID]*types.Sequence
	bySegment map[types.SegmentID]types.SequenceID
	bySource  map[string]types.SequenceID
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the default UUID-backed id generator, so tests
// can supply deterministic ids.
func WithIDGenerator(g types.IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// New creates a Store that parses with the given engine and publishes on
// the given bus.
func New(engine *parser.Engine, bus *events.Bus, opts ...Option) *Store {
	s := &Store{
		engine:    engine,
		bus:       bus,
		ids:       types.UUIDGenerator{},
		sequences: make(map[types.SequenceID]*types.Sequence),
		bySegment: make(map[types.SegmentID]types.SequenceID),
		bySource:  make(map[string]types.SequenceID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bus returns the bus this store publishes on.
func (s *Store) Bus() *events.Bus { return s.bus }

// Subscribe registers a handler for the given event type.
func (s *Store) Subscribe(t events.Type, h events.Handler) {
	s.bus.Subscribe(t, h)
}

// Ingest parses the source file and builds (or replaces) the sequence for
// it. The whole resulting segment set is validated before anything is
// published; a failed ingest leaves the store exactly as it was. Events for
// one ingest are emitted in a fixed order: SequenceCreated, one
// SegmentCreated per segment, then SequenceUpdated.
func (s *Store) Ingest(ctx context.Context, path string) (types.Sequence, error) {
	turns, err := s.engine.ParseFile(ctx, path)
	if err != nil {
		return types.Sequence{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return types.Sequence{}, fmt.Errorf("failed to parse file: %w", err)
	}

	s.mu.Lock()
	// Re-ingesting a known source keeps its sequence id stable.
	seqID, known := s.bySource[path]
	if !known {
		seqID = s.ids.NewSequenceID()
	}

	segs := make([]types.Segment, len(turns))
	for i, t := range turns {
		segs[i] = types.Segment{
			ID:         s.ids.NewSegmentID(),
			SequenceID: seqID,
			StartIndex: t.StartIndex,
			EndIndex:   t.EndIndex,
			Content:    t.Content,
			Metadata:   t.Metadata,
			Order:      i,
		}
	}

	seq := &types.Sequence{
		ID:            seqID,
		SourceFile:    path,
		Segments:      segs,
		TotalSegments: len(segs),
		Metadata: types.SequenceMetadata{
			Metadata:     types.AggregateMetadata(segs),
			SourceFile:   path,
			FileSize:     info.Size(),
			LastModified: info.ModTime(),
		},
	}
	normalize(seq)
	if err := validate(seq, s.engine.Options().Marker); err != nil {
		s.mu.Unlock()
		return types.Sequence{}, err
	}

	if old, ok := s.sequences[seqID]; ok {
		for _, seg := range old.Segments {
			delete(s.bySegment, seg.ID)
		}
	}
	s.sequences[seqID] = seq
	s.bySource[path] = seqID
	for _, seg := range seq.Segments {
		s.bySegment[seg.ID] = seqID
	}
	result := seq.Clone()
	s.mu.Unlock()

	s.bus.Emit(events.Event{Type: events.SequenceCreated, SequenceID: seqID, SourceFile: path})
	for _, seg := range result.Segments {
		s.bus.Emit(events.Event{Type: events.SegmentCreated, SequenceID: seqID, SegmentID: seg.ID, SourceFile: path})
	}
	s.bus.Emit(events.Event{Type: events.SequenceUpdated, SequenceID: seqID, SourceFile: path})

	return result, nil
}

// UpdateBoundaries replaces the identified segment with one holding the new
// half-open range, keeping its content and metadata. The change is rejected
// if the range is malformed or overlaps any sibling; a rejected call leaves
// the store untouched.
func (s *Store) UpdateBoundaries(id types.SegmentID, newStart, newEnd int64) error {
	if newStart < 0 || newStart >= newEnd {
		return fmt.Errorf("%w: range [%d, %d)", types.ErrInvalidSegment, newStart, newEnd)
	}

	s.mu.Lock()
	seqID, ok := s.bySegment[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: segment %s", types.ErrNotFound, id)
	}
	old := s.sequences[seqID]

	for _, sib := range old.Segments {
		if sib.ID == id {
			continue
		}
		if newStart < sib.EndIndex && sib.StartIndex < newEnd {
			s.mu.Unlock()
			return fmt.Errorf("%w: [%d, %d) intersects segment %s [%d, %d)",
				types.ErrOverlap, newStart, newEnd, sib.ID, sib.StartIndex, sib.EndIndex)
		}
	}

	next := old.Clone()
	candidate := &next
	for i := range candidate.Segments {
		if candidate.Segments[i].ID == id {
			candidate.Segments[i].StartIndex = newStart
			candidate.Segments[i].EndIndex = newEnd
			break
		}
	}
	normalize(candidate)
	if err := validate(candidate, s.engine.Options().Marker); err != nil {
		s.mu.Unlock()
		return err
	}

	s.sequences[seqID] = candidate
	s.mu.Unlock()

	s.bus.Emit(events.Event{Type: events.BoundaryChanged, SequenceID: seqID, SegmentID: id, SourceFile: candidate.SourceFile})
	s.bus.Emit(events.Event{Type: events.SequenceUpdated, SequenceID: seqID, SourceFile: candidate.SourceFile})
	return nil
}

// GetSegment returns a copy of the segment, or ErrNotFound.
func (s *Store) GetSegment(id types.SegmentID) (types.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seg, _, ok := s.locateSegment(id)
	if !ok {
		return types.Segment{}, fmt.Errorf("%w: segment %s", types.ErrNotFound, id)
	}
	return seg.Clone(), nil
}

// GetSequence returns a copy of the sequence, or ErrNotFound.
func (s *Store) GetSequence(id types.SequenceID) (types.Sequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.sequences[id]
	if !ok {
		return types.Sequence{}, fmt.Errorf("%w: sequence %s", types.ErrNotFound, id)
	}
	return seq.Clone(), nil
}

// GetSequenceSegments returns copies of the sequence's segments in order.
func (s *Store) GetSequenceSegments(id types.SequenceID) ([]types.Segment, error) {
	seq, err := s.GetSequence(id)
	if err != nil {
		return nil, err
	}
	return seq.Segments, nil
}

// AllSequences returns copies of every sequence, ordered by source file.
func (s *Store) AllSequences() []types.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Sequence, 0, len(s.sequences))
	for _, seq := range s.sequences {
		out = append(out, seq.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceFile < out[j].SourceFile })
	return out
}

// AllSegments returns copies of every segment across all sequences, grouped
// by source file and ordered by start index within each.
func (s *Store) AllSegments() []types.Segment {
	var out []types.Segment
	for _, seq := range s.AllSequences() {
		out = append(out, seq.Segments...)
	}
	return out
}

// NextSegment returns the segment after the given one in its sequence's
// sorted order. The second result is false at the end of the sequence or
// when the id is unknown; navigation misses are not errors.
func (s *Store) NextSegment(id types.SegmentID) (types.Segment, bool) {
	return s.neighbor(id, +1)
}

// PreviousSegment returns the segment before the given one, with the same
// miss semantics as NextSegment.
func (s *Store) PreviousSegment(id types.SegmentID) (types.Segment, bool) {
	return s.neighbor(id, -1)
}

func (s *Store) neighbor(id types.SegmentID, delta int) (types.Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seqID, ok := s.bySegment[id]
	if !ok {
		return types.Segment{}, false
	}
	seq := s.sequences[seqID]
	for i, seg := range seq.Segments {
		if seg.ID == id {
			j := i + delta
			if j < 0 || j >= len(seq.Segments) {
				return types.Segment{}, false
			}
			return seq.Segments[j].Clone(), true
		}
	}
	return types.Segment{}, false
}

// locateSegment finds a segment and its owning sequence. Caller must hold mu.
func (s *Store) locateSegment(id types.SegmentID) (types.Segment, *types.Sequence, bool) {
	seqID, ok := s.bySegment[id]
	if !ok {
		return types.Segment{}, nil, false
	}
	seq := s.sequences[seqID]
	for _, seg := range seq.Segments {
		if seg.ID == id {
			return seg, seq, true
		}
	}
	return types.Segment{}, nil, false
}

// normalize sorts segments by start index and recomputes derived fields:
// per-segment order, total count, and the aggregate metadata fold.
func normalize(seq *types.Sequence) {
	sort.Slice(seq.Segments, func(i, j int) bool {
		return seq.Segments[i].StartIndex < seq.Segments[j].StartIndex
	})
	for i := range seq.Segments {
		seq.Segments[i].Order = i
	}
	seq.TotalSegments = len(seq.Segments)
	seq.Metadata.Metadata = types.AggregateMetadata(seq.Segments)
}

// validate enforces the sequence invariants: well-formed half-open ranges,
// non-empty marker-prefixed content, ascending order, pairwise non-overlap.
// Violations are hard errors, never coerced.
func validate(seq *types.Sequence, token string) error {
	for i, seg := range seq.Segments {
		if seg.StartIndex < 0 || seg.StartIndex >= seg.EndIndex {
			return fmt.Errorf("%w: segment %s has range [%d, %d)", types.ErrInvalidSegment, seg.ID, seg.StartIndex, seg.EndIndex)
		}
		if seg.Content == "" {
			return fmt.Errorf("%w: segment %s has empty content", types.ErrInvalidSegment, seg.ID)
		}
		if !marker.IsBoundary(seg.Content, token) {
			return fmt.Errorf("%w: segment %s does not start with marker %q", types.ErrInvalidSegment, seg.ID, token)
		}
		if i > 0 {
			prev := seq.Segments[i-1]
			if prev.EndIndex > seg.StartIndex {
				return fmt.Errorf("%w: segment %s [%d, %d) and segment %s [%d, %d)",
					types.ErrOverlap, prev.ID, prev.StartIndex, prev.EndIndex, seg.ID, seg.StartIndex, seg.EndIndex)
			}
		}
	}
	return nil
}
