package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iPoetDev/browsechat-sub001/internal/events"
	"github.com/iPoetDev/browsechat-sub001/internal/parser"
	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

// fakeIDs hands out deterministic sequential ids.
type fakeIDs struct {
	sequences int
	segments  int
}

func (g *fakeIDs) NewSequenceID() types.SequenceID {
	g.sequences++
	return types.SequenceID(fmt.Sprintf("seq-%d", g.sequences))
}

func (g *fakeIDs) NewSegmentID() types.SegmentID {
	g.segments++
	return types.SegmentID(fmt.Sprintf("segment-%d", g.segments))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(parser.New(parser.Options{}), events.NewBus(), WithIDGenerator(&fakeIDs{}))
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngest(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\nOther: hey\nMe: bye\n")

	seq, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, types.SequenceID("seq-1"), seq.ID)
	assert.Equal(t, path, seq.SourceFile)
	assert.Equal(t, 2, seq.TotalSegments)
	require.Len(t, seq.Segments, 2)

	assert.Equal(t, types.SegmentID("segment-1"), seq.Segments[0].ID)
	assert.Equal(t, 0, seq.Segments[0].Order)
	assert.Equal(t, 1, seq.Segments[1].Order)
	assert.Equal(t, []string{"Me", "Other"}, seq.Metadata.Participants)
	assert.Equal(t, int64(26), seq.Metadata.FileSize)
}

func TestIngest_EventOrder(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\nMe: bye\n")

	var got []events.Type
	for _, et := range events.AllTypes {
		et := et
		st.Subscribe(et, func(ev events.Event) { got = append(got, ev.Type) })
	}

	_, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	want := []events.Type{
		events.SequenceCreated,
		events.SegmentCreated,
		events.SegmentCreated,
		events.SequenceUpdated,
	}
	assert.Equal(t, want, got)
}

func TestIngest_TwoListenersInOrder(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: only turn\n")

	var calls []string
	st.Subscribe(events.SegmentCreated, func(ev events.Event) { calls = append(calls, "a") })
	st.Subscribe(events.SegmentCreated, func(ev events.Event) { calls = append(calls, "b") })

	_, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestIngest_EmptyFileLeavesStoreUnchanged(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "")

	_, err := st.Ingest(context.Background(), path)
	assert.ErrorIs(t, err, types.ErrEmptyFile)
	assert.Empty(t, st.AllSequences())
	assert.Empty(t, st.AllSegments())
}

func TestIngest_ReplacesSequenceForSource(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.log")
	require.NoError(t, os.WriteFile(path, []byte("Me: one\nMe: two\n"), 0644))

	first, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("Me: rewritten\n"), 0644))
	second, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	// Same source keeps the same sequence id.
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, st.AllSequences(), 1)
	assert.Len(t, st.AllSegments(), 1)

	// Replaced segments are gone from the index.
	_, err = st.GetSegment(first.Segments[0].ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateBoundaries(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\nOther: hey\nMe: bye\n")
	seq, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	var got []events.Type
	st.Subscribe(events.BoundaryChanged, func(ev events.Event) { got = append(got, ev.Type) })
	st.Subscribe(events.SequenceUpdated, func(ev events.Event) { got = append(got, ev.Type) })

	// Shrink the first segment; [0, 10) still clears the sibling at 18.
	first := seq.Segments[0]
	require.NoError(t, st.UpdateBoundaries(first.ID, 0, 10))

	updated, err := st.GetSegment(first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.StartIndex)
	assert.Equal(t, int64(10), updated.EndIndex)
	// Content and metadata carry over unchanged.
	assert.Equal(t, first.Content, updated.Content)
	assert.Equal(t, first.Metadata, updated.Metadata)

	assert.Equal(t, []events.Type{events.BoundaryChanged, events.SequenceUpdated}, got)
}

func TestUpdateBoundaries_RejectsOverlap(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\nOther: hey\nMe: bye\n")
	seq, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	first := seq.Segments[0]
	before, err := st.GetSegment(first.ID)
	require.NoError(t, err)

	// Second segment occupies [18, 26); extending into it must fail.
	err = st.UpdateBoundaries(first.ID, 0, 20)
	assert.ErrorIs(t, err, types.ErrOverlap)

	after, err := st.GetSegment(first.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected update must leave the segment untouched")
}

func TestUpdateBoundaries_InvalidRange(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\n")
	seq, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	id := seq.Segments[0].ID
	assert.ErrorIs(t, st.UpdateBoundaries(id, -1, 5), types.ErrInvalidSegment)
	assert.ErrorIs(t, st.UpdateBoundaries(id, 5, 5), types.ErrInvalidSegment)
	assert.ErrorIs(t, st.UpdateBoundaries(id, 6, 2), types.ErrInvalidSegment)
}

func TestUpdateBoundaries_NotFound(t *testing.T) {
	st := newTestStore(t)
	err := st.UpdateBoundaries(types.SegmentID("missing"), 0, 5)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetters_DefensiveCopies(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\nOther: hey\nMe: bye\n")
	seq, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	got, err := st.GetSequence(seq.ID)
	require.NoError(t, err)
	got.Segments[0].Content = "tampered"
	got.Metadata.Participants[0] = "tampered"

	fresh, err := st.GetSequence(seq.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "tampered", fresh.Segments[0].Content)
	assert.NotEqual(t, "tampered", fresh.Metadata.Participants[0])
}

func TestAllSegments_ValueEqualReferenceDistinct(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\nMe: bye\n")
	_, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	a := st.AllSegments()
	b := st.AllSegments()
	require.Equal(t, a, b)

	a[0].Content = "tampered"
	assert.NotEqual(t, a[0].Content, b[0].Content)
}

func TestNavigation(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: one\nMe: two\nMe: three\n")
	seq, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, seq.Segments, 3)

	mid := seq.Segments[1]

	next, ok := st.NextSegment(mid.ID)
	require.True(t, ok)
	assert.Equal(t, seq.Segments[2].ID, next.ID)

	prev, ok := st.PreviousSegment(mid.ID)
	require.True(t, ok)
	assert.Equal(t, seq.Segments[0].ID, prev.ID)

	_, ok = st.NextSegment(seq.Segments[2].ID)
	assert.False(t, ok, "no next at the end of the sequence")

	_, ok = st.PreviousSegment(seq.Segments[0].ID)
	assert.False(t, ok, "no previous at the start of the sequence")

	_, ok = st.NextSegment(types.SegmentID("missing"))
	assert.False(t, ok, "unknown ids are a miss, not an error")
}

func TestGetSegment_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetSegment(types.SegmentID("missing"))
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = st.GetSequence(types.SequenceID("missing"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetSequenceSegments(t *testing.T) {
	st := newTestStore(t)
	path := writeLog(t, "Me: hi\nMe: bye\n")
	seq, err := st.Ingest(context.Background(), path)
	require.NoError(t, err)

	segs, err := st.GetSequenceSegments(seq.ID)
	require.NoError(t, err)
	assert.Len(t, segs, 2)
	assert.True(t, segs[0].StartIndex < segs[1].StartIndex)
}
