// internal/types/models.go
package types

import "time"

// Metadata describes a single segment: who spoke, which #tags appeared, and
// how long the raw text was. The timestamp window is nil when the segment
// carries no recognizable timestamps.
type Metadata struct {
	Participants []string   `json:"participants"`
	Keywords     []string   `json:"keywords"`
	Length       int        `json:"length"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// SequenceMetadata is the aggregate over a sequence's segments plus
// source-file facts.
type SequenceMetadata struct {
	Metadata
	SourceFile   string    `json:"source_file"`
	FileSize     int64     `json:"file_size"`
	LastModified time.Time `json:"last_modified"`
}

// Segment is one conversation turn. Segments are immutable once built;
// boundary edits produce a replacement value with the same ID.
type Segment struct {
	ID         SegmentID  `json:"id"`
	SequenceID SequenceID `json:"sequence_id"`
	StartIndex int64      `json:"start_index"`
	EndIndex   int64      `json:"end_index"`
	Content    string     `json:"content"`
	Metadata   Metadata   `json:"metadata"`
	Order      int        `json:"order"`
}

// Sequence is the ordered set of segments parsed from one source file.
// Segments are sorted ascending by StartIndex and pairwise non-overlapping.
type Sequence struct {
	ID            SequenceID       `json:"id"`
	SourceFile    string           `json:"source_file"`
	Segments      []Segment        `json:"segments"`
	TotalSegments int              `json:"total_segments"`
	Metadata      SequenceMetadata `json:"metadata"`
}

// Clone returns a deep copy of the segment, including its metadata slices.
func (s Segment) Clone() Segment {
	out := s
	out.Metadata = s.Metadata.Clone()
	return out
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := m
	out.Participants = append([]string(nil), m.Participants...)
	out.Keywords = append([]string(nil), m.Keywords...)
	if m.StartTime != nil {
		t := *m.StartTime
		out.StartTime = &t
	}
	if m.EndTime != nil {
		t := *m.EndTime
		out.EndTime = &t
	}
	return out
}

// Clone returns a deep copy of the sequence, including all segments.
func (q Sequence) Clone() Sequence {
	out := q
	out.Segments = make([]Segment, len(q.Segments))
	for i, seg := range q.Segments {
		out.Segments[i] = seg.Clone()
	}
	out.Metadata.Metadata = q.Metadata.Metadata.Clone()
	return out
}

// AggregateMetadata folds segment metadata into sequence-level metadata:
// union of participants and keywords (first-seen order), sum of lengths,
// min start / max end of the timestamp windows.
func AggregateMetadata(segments []Segment) Metadata {
	var agg Metadata
	seenP := make(map[string]bool)
	seenK := make(map[string]bool)
	for _, seg := range segments {
		for _, p := range seg.Metadata.Participants {
			if !seenP[p] {
				seenP[p] = true
				agg.Participants = append(agg.Participants, p)
			}
		}
		for _, k := range seg.Metadata.Keywords {
			if !seenK[k] {
				seenK[k] = true
				agg.Keywords = append(agg.Keywords, k)
			}
		}
		agg.Length += seg.Metadata.Length
		if t := seg.Metadata.StartTime; t != nil {
			if agg.StartTime == nil || t.Before(*agg.StartTime) {
				tt := *t
				agg.StartTime = &tt
			}
		}
		if t := seg.Metadata.EndTime; t != nil {
			if agg.EndTime == nil || t.After(*agg.EndTime) {
				tt := *t
				agg.EndTime = &tt
			}
		}
	}
	return agg
}
