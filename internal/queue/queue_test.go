package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/smukkama/agrisense/internal/database"
	"github.com/smukkama/agrisense/internal/protocol"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/zone"
)

type fakeSource struct {
	ch        chan kafka.Message
	mu        sync.Mutex
	committed []kafka.Message
}

func newFakeSource(msgs ...kafka.Message) *fakeSource {
	ch := make(chan kafka.Message, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	return &fakeSource{ch: ch}
}

func (f *fakeSource) Consume(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.ch:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeSource) Commit(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeSource) Committed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

type fakeStore struct {
	mu       sync.Mutex
	batches  []*database.ReadingBatch
	err      error
	failures int
}

func (s *fakeStore) soilSeqs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var seqs []int
	for _, b := range s.batches {
		for _, r := range b.Soil {
			seqs = append(seqs, r.Seq)
		}
	}
	return seqs
}

func (s *fakeStore) InsertReadings(ctx context.Context, b *database.ReadingBatch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if s.failures > 0 {
		s.failures--
		return 0, errors.New("connection reset")
	}
	s.batches = append(s.batches, b)
	return int64(b.Len()), nil
}

func encoded(t *testing.T, msgs ...*protocol.ReadingMessage) []kafka.Message {
	t.Helper()
	out, err := EncodeReadings(msgs)
	if err != nil {
		t.Fatalf("EncodeReadings failed: %v", err)
	}
	return out
}

func sampleMessages(t *testing.T) []kafka.Message {
	run := uuid.New()
	ts := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	msgs := encoded(t,
		protocol.NewSoilMessage(run, 0, reading.SoilReading{Timestamp: ts, ZoneID: zone.Zone4, SoilType: zone.Silt}),
		protocol.NewWaterMessage(run, 0, reading.WaterReading{Timestamp: ts, SourceType: reading.River, QualityGrade: reading.GradeB}),
		protocol.NewWeatherMessage(run, 0, reading.WeatherReading{Timestamp: ts, Temperature: 21}),
	)
	return append(msgs, kafka.Message{Value: []byte("garbage")})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for the batch writer")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEncodeReadings_Keys(t *testing.T) {
	msgs := sampleMessages(t)
	want := []string{"Zone_4", "River", protocol.WeatherKey}
	for i, w := range want {
		if string(msgs[i].Key) != w {
			t.Errorf("Message %d: expected key %s, got %s", i, w, msgs[i].Key)
		}
	}

	bad := &protocol.ReadingMessage{Kind: protocol.KindWeather}
	if _, err := EncodeReadings([]*protocol.ReadingMessage{bad}); err == nil {
		t.Error("Expected an error for an invalid message")
	}
}

func TestBatchWriter_WritesAndCommits(t *testing.T) {
	src := newFakeSource(sampleMessages(t)...)
	store := &fakeStore{}

	bw := NewBatchWriter(src, store, 2, 20*time.Millisecond)
	if err := bw.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return src.Committed() == 4 })
	bw.Stop()

	stats := bw.Stats()
	if stats.Written != 3 || stats.Skipped != 1 || stats.Failed != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	var soil, water, weather int
	for _, b := range store.batches {
		soil += len(b.Soil)
		water += len(b.Water)
		weather += len(b.Weather)
	}
	if soil != 1 || water != 1 || weather != 1 {
		t.Errorf("Expected one reading of each kind, got %d/%d/%d", soil, water, weather)
	}
}

func TestBatchWriter_FailedWriteIsNotCommitted(t *testing.T) {
	src := newFakeSource(sampleMessages(t)[:2]...)
	store := &fakeStore{err: errors.New("database down")}

	bw := NewBatchWriter(src, store, 2, 20*time.Millisecond)
	if err := bw.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return bw.Stats().Failed >= 2 })
	bw.Stop()

	if src.Committed() != 0 {
		t.Errorf("Expected no commits after a failed write, got %d", src.Committed())
	}
}

func TestBatchWriter_RetriesFailedBatch(t *testing.T) {
	run := uuid.New()
	ts := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	var msgs []*protocol.ReadingMessage
	for seq := 0; seq < 4; seq++ {
		msgs = append(msgs, protocol.NewSoilMessage(run, seq, reading.SoilReading{Timestamp: ts, ZoneID: zone.Zone2, SoilType: zone.Clay}))
	}
	src := newFakeSource(encoded(t, msgs...)...)
	store := &fakeStore{failures: 1}

	bw := NewBatchWriter(src, store, 2, time.Hour)
	bw.retryBackoff = time.Millisecond
	if err := bw.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return src.Committed() == 4 })
	bw.Stop()

	if diff := cmp.Diff([]int{0, 1, 2, 3}, store.soilSeqs()); diff != "" {
		t.Errorf("Stored seqs mismatch:\n%s", diff)
	}
	stats := bw.Stats()
	if stats.Written != 4 || stats.Failed != 2 || stats.Batches != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestBatchWriter_StopFlushesPending(t *testing.T) {
	src := newFakeSource(sampleMessages(t)[:1]...)
	store := &fakeStore{}

	bw := NewBatchWriter(src, store, 100, time.Hour)
	if err := bw.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(src.ch) == 0 })
	time.Sleep(20 * time.Millisecond)
	bw.Stop()

	if bw.Stats().Written != 1 || src.Committed() != 1 {
		t.Errorf("Pending message was not flushed on stop: %+v", bw.Stats())
	}
}

func TestBatchWriter_RejectsZeroInterval(t *testing.T) {
	bw := NewBatchWriter(newFakeSource(), &fakeStore{}, 10, 0)
	if err := bw.Start(context.Background()); err == nil {
		t.Error("Expected an error for a zero flush interval")
	}
}

func TestPartitionForKey(t *testing.T) {
	for _, id := range zone.IDs() {
		p := PartitionForKey(string(id), 6)
		if p < 0 || p >= 6 {
			t.Errorf("Partition %d out of range for %s", p, id)
		}
		if p != PartitionForKey(string(id), 6) {
			t.Errorf("Partition for %s is not stable", id)
		}
	}
	if PartitionForKey("Zone_1", 0) != 0 {
		t.Error("Expected partition 0 when there are no partitions")
	}
}
