package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSink records every upsert batch and can be told to fail.
type fakeSink struct {
	batches [][]CampsiteRecord
	failErr error
}

func (s *fakeSink) UpsertCampsites(_ context.Context, records []CampsiteRecord) error {
	if s.failErr != nil {
		return s.failErr
	}
	batch := make([]CampsiteRecord, len(records))
	copy(batch, records)
	s.batches = append(s.batches, batch)
	return nil
}

func makeRecords(n int) []CampsiteRecord {
	records := make([]CampsiteRecord, n)
	for i := range records {
		records[i] = CampsiteRecord{
			RIDBCampsiteID: fmt.Sprintf("C%d", i+1),
			Name:           fmt.Sprintf("Site %d", i+1),
		}
	}
	return records
}

func TestBatcher_FlushesAtThreshold(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	b := NewBatcher(sink, 25, nil)
	ctx := context.Background()

	total := 0
	for _, rec := range makeRecords(60) {
		flushed, err := b.Add(ctx, rec)
		require.NoError(t, err)
		total += flushed
	}
	require.Equal(t, 50, total)
	require.Equal(t, 10, b.Pending())

	flushed, err := b.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, 10, flushed)
	require.Zero(t, b.Pending())

	require.Len(t, sink.batches, 3)
	require.Len(t, sink.batches[0], 25)
	require.Len(t, sink.batches[1], 25)
	require.Len(t, sink.batches[2], 10)
	require.Equal(t, "C1", sink.batches[0][0].RIDBCampsiteID)
	require.Equal(t, "C60", sink.batches[2][9].RIDBCampsiteID)
}

func TestBatcher_FlushEmptyIsNoop(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	b := NewBatcher(sink, 25, nil)
	flushed, err := b.Flush(context.Background())
	require.NoError(t, err)
	require.Zero(t, flushed)
	require.Empty(t, sink.batches)
}

func TestBatcher_FailedFlushKeepsBuffer(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	sink := &fakeSink{failErr: boom}
	b := NewBatcher(sink, 2, nil)
	ctx := context.Background()

	_, err := b.Add(ctx, CampsiteRecord{RIDBCampsiteID: "C1"})
	require.NoError(t, err)
	_, err = b.Add(ctx, CampsiteRecord{RIDBCampsiteID: "C2"})
	require.Error(t, err)

	var fe *FlushError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, 2, fe.Count)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, b.Pending())

	// Same buffer flushes once the sink recovers.
	sink.failErr = nil
	flushed, err := b.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, flushed)
	require.Zero(t, b.Pending())
}

func TestBatcher_DefaultSize(t *testing.T) {
	t.Parallel()

	b := NewBatcher(&fakeSink{}, 0, nil)
	require.Equal(t, DefaultBatchSize, b.size)
	require.Equal(t, DefaultBatchSize*bufferCeilingFactor, b.maxBuffer)
}
