package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencampsites/ridb-collector/internal/metrics"
)

const (
	// DefaultBatchSize is the flush threshold for buffered records.
	DefaultBatchSize = 25

	// bufferCeilingFactor caps the in-memory buffer at a multiple of the
	// batch size.
	bufferCeilingFactor = 4
)

// Sink persists campsite records idempotently: writing the same records
// twice must leave one row per campsite ID.
type Sink interface {
	UpsertCampsites(ctx context.Context, records []CampsiteRecord) error
}

// FlushError reports a failed flush. The batcher keeps its buffer when a
// flush fails so the records are not lost silently.
type FlushError struct {
	Count int
	Err   error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush %d campsites: %v", e.Count, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }

// Batcher accumulates records and writes them to the sink in batches. Not
// safe for concurrent use; the orchestrator feeds it from a single goroutine.
type Batcher struct {
	sink      Sink
	size      int
	maxBuffer int
	buf       []CampsiteRecord
	logger    *zap.Logger
}

// NewBatcher builds a Batcher flushing every size records, with a hard
// buffer ceiling of four times that.
func NewBatcher(sink Sink, size int, logger *zap.Logger) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batcher{
		sink:      sink,
		size:      size,
		maxBuffer: size * bufferCeilingFactor,
		buf:       make([]CampsiteRecord, 0, size),
		logger:    logger,
	}
}

// Add buffers one record and flushes when the threshold or the buffer
// ceiling is reached. It returns the number of records flushed, zero when
// the record was only buffered.
func (b *Batcher) Add(ctx context.Context, rec CampsiteRecord) (int, error) {
	b.buf = append(b.buf, rec)
	if len(b.buf) >= b.size || len(b.buf) >= b.maxBuffer {
		return b.Flush(ctx)
	}
	return 0, nil
}

// Flush writes the buffered records to the sink. On failure the buffer is
// kept intact and a *FlushError is returned.
func (b *Batcher) Flush(ctx context.Context) (int, error) {
	if len(b.buf) == 0 {
		return 0, nil
	}
	n := len(b.buf)
	b.logger.Debug("flushing campsite batch",
		zap.Int("count", n),
		zap.String("first_id", b.buf[0].RIDBCampsiteID),
		zap.String("last_id", b.buf[n-1].RIDBCampsiteID),
	)
	if err := b.sink.UpsertCampsites(ctx, b.buf); err != nil {
		metrics.ObserveFlush("error", 0)
		return 0, &FlushError{Count: n, Err: err}
	}
	metrics.ObserveFlush("ok", n)
	b.buf = b.buf[:0]
	return n, nil
}

// Pending reports how many records are buffered and unflushed.
func (b *Batcher) Pending() int {
	return len(b.buf)
}
