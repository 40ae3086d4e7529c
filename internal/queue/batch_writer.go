package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/smukkama/agrisense/internal/database"
	"github.com/smukkama/agrisense/internal/protocol"
)

// MessageSource is the consuming side of a topic
type MessageSource interface {
	Consume(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// ReadingStore persists decoded readings
type ReadingStore interface {
	InsertReadings(ctx context.Context, batch *database.ReadingBatch) (int64, error)
}

// WriterStats counts what the batch writer has done so far
type WriterStats struct {
	Batches int64
	Written int64
	Skipped int64
	Failed  int64
}

// maxRetryBackoff caps the wait between attempts to store a failed batch
const maxRetryBackoff = 30 * time.Second

// BatchWriter consumes reading messages and writes them to the database
// in batches. Offsets are committed only after the batch is stored; a
// failed batch is retried before anything newer is consumed.
type BatchWriter struct {
	source        MessageSource
	store         ReadingStore
	batchSize     int
	flushInterval time.Duration
	retryBackoff  time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	cancel        context.CancelFunc
	wg            sync.WaitGroup

	batches atomic.Int64
	written atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(source MessageSource, store ReadingStore, batchSize int, flushInterval time.Duration) *BatchWriter {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &BatchWriter{
		source:        source,
		store:         store,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		retryBackoff:  time.Second,
		stopCh:        make(chan struct{}),
	}
}

// Start begins consuming and writing to the database
func (bw *BatchWriter) Start(ctx context.Context) error {
	if bw.flushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive, got %s", bw.flushInterval)
	}
	ctx, bw.cancel = context.WithCancel(ctx)

	msgCh := make(chan kafka.Message, bw.batchSize)
	bw.wg.Add(2)
	go bw.consume(ctx, msgCh)
	go bw.run(ctx, msgCh)
	return nil
}

// Stop flushes the pending batch and stops the writer
func (bw *BatchWriter) Stop() {
	bw.stopOnce.Do(func() { close(bw.stopCh) })
	bw.wg.Wait()
}

// Stats returns a snapshot of the writer counters
func (bw *BatchWriter) Stats() WriterStats {
	return WriterStats{
		Batches: bw.batches.Load(),
		Written: bw.written.Load(),
		Skipped: bw.skipped.Load(),
		Failed:  bw.failed.Load(),
	}
}

func (bw *BatchWriter) consume(ctx context.Context, msgCh chan<- kafka.Message) {
	defer bw.wg.Done()

	for {
		msg, err := bw.source.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Printf("Consumer error: %v\n", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		select {
		case msgCh <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (bw *BatchWriter) run(ctx context.Context, msgCh <-chan kafka.Message) {
	defer bw.wg.Done()
	defer bw.cancel()

	var batch []kafka.Message
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-bw.stopCh:
		drain:
			for {
				select {
				case msg := <-msgCh:
					batch = append(batch, msg)
				default:
					break drain
				}
			}
			if err := bw.flush(ctx, batch); err != nil {
				fmt.Printf("Pending batch left uncommitted: %v\n", err)
			}
			return

		case <-ctx.Done():
			// uncommitted messages are redelivered on restart
			return

		case <-ticker.C:
			if len(batch) > 0 {
				fmt.Printf("Flush interval reached (%d messages), flushing...\n", len(batch))
				if !bw.writeBatch(ctx, batch) {
					return
				}
				batch = nil
			}

		case msg := <-msgCh:
			batch = append(batch, msg)
			if len(batch) >= bw.batchSize {
				if !bw.writeBatch(ctx, batch) {
					return
				}
				batch = nil
			}
		}
	}
}

// writeBatch flushes the batch until it is stored, backing off between
// attempts. It returns false when the writer stops first; the batch then
// stays uncommitted and is redelivered to the group.
func (bw *BatchWriter) writeBatch(ctx context.Context, batch []kafka.Message) bool {
	backoff := bw.retryBackoff
	for {
		err := bw.flush(ctx, batch)
		if err == nil {
			return true
		}
		fmt.Printf("Retrying batch of %d messages in %s: %v\n", len(batch), backoff, err)

		select {
		case <-ctx.Done():
			return false
		case <-bw.stopCh:
			return false
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, maxRetryBackoff)
	}
}

func (bw *BatchWriter) flush(ctx context.Context, batch []kafka.Message) error {
	if len(batch) == 0 {
		return nil
	}

	readings, skipped := decodeBatch(batch)
	if readings.Len() > 0 {
		n, err := bw.store.InsertReadings(ctx, readings)
		if err != nil {
			bw.failed.Add(int64(len(batch)))
			return fmt.Errorf("failed to write batch of %d messages: %w", len(batch), err)
		}
		bw.written.Add(n)
	}
	bw.skipped.Add(int64(skipped))
	bw.batches.Add(1)

	if err := bw.source.Commit(ctx, batch...); err != nil {
		fmt.Printf("Failed to commit offsets: %v\n", err)
	}

	fmt.Printf("Flushed batch: %d readings, %d skipped\n", readings.Len(), skipped)
	return nil
}

// decodeBatch sorts the messages by reading kind. Messages that cannot be
// decoded are counted and dropped so they do not block the partition.
func decodeBatch(batch []kafka.Message) (*database.ReadingBatch, int) {
	out := &database.ReadingBatch{}
	skipped := 0

	for _, msg := range batch {
		m, err := protocol.DecodeReadingMessage(msg.Value)
		if err != nil {
			fmt.Printf("Skipping message at partition=%d offset=%d: %v\n", msg.Partition, msg.Offset, err)
			skipped++
			continue
		}

		switch m.Kind {
		case protocol.KindSoil:
			out.Soil = append(out.Soil, database.SoilRow{RunID: m.RunID, Seq: m.Seq, SoilReading: *m.Soil})
		case protocol.KindWater:
			out.Water = append(out.Water, database.WaterRow{RunID: m.RunID, Seq: m.Seq, WaterReading: *m.Water})
		case protocol.KindWeather:
			out.Weather = append(out.Weather, database.WeatherRow{RunID: m.RunID, Seq: m.Seq, WeatherReading: *m.Weather})
		}
	}

	return out, skipped
}
