package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func start(t *testing.T) (*Scheduler, context.CancelFunc) {
	t.Helper()
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, cancel
}

func TestScheduler_At(t *testing.T) {
	s, _ := start(t)

	var ran atomic.Bool
	s.At("once", time.Now().Add(50*time.Millisecond), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	time.Sleep(150 * time.Millisecond)
	if !ran.Load() {
		t.Error("Task was not executed")
	}
	if s.Len() != 0 {
		t.Errorf("One-shot task should be removed after running, %d left", s.Len())
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s, _ := start(t)

	var ran atomic.Bool
	s.At("once", time.Now().Add(50*time.Millisecond), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	if !s.Cancel("once") {
		t.Error("Cancel returned false")
	}
	if s.Cancel("once") {
		t.Error("Second cancel should report a missing task")
	}

	time.Sleep(100 * time.Millisecond)
	if ran.Load() {
		t.Error("Task was executed despite being cancelled")
	}
}

func TestScheduler_Ordering(t *testing.T) {
	s, _ := start(t)

	var mu sync.Mutex
	var results []int
	record := func(i int) Job {
		return func(ctx context.Context) error {
			mu.Lock()
			results = append(results, i)
			mu.Unlock()
			return nil
		}
	}

	now := time.Now()
	s.At("task3", now.Add(150*time.Millisecond), record(3))
	s.At("task1", now.Add(50*time.Millisecond), record(1))
	s.At("task2", now.Add(100*time.Millisecond), record(2))

	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 3 || results[0] != 1 || results[1] != 2 || results[2] != 3 {
		t.Errorf("Tasks executed in wrong order: %v", results)
	}
}

func TestScheduler_ReplaceExisting(t *testing.T) {
	s, _ := start(t)

	var count atomic.Int64
	s.At("job", time.Now().Add(100*time.Millisecond), func(ctx context.Context) error {
		count.Add(1)
		return nil
	})
	s.At("job", time.Now().Add(50*time.Millisecond), func(ctx context.Context) error {
		count.Add(10)
		return nil
	})

	time.Sleep(200 * time.Millisecond)
	if count.Load() != 10 {
		t.Errorf("Expected count=10 (only second task), got %d", count.Load())
	}
}

func TestScheduler_Every(t *testing.T) {
	s, _ := start(t)

	var count atomic.Int64
	err := s.Every("tick", time.Now().Add(10*time.Millisecond), 40*time.Millisecond, func(ctx context.Context) error {
		count.Add(1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if n := count.Load(); n < 3 {
		t.Errorf("Expected at least 3 runs, got %d", n)
	}
	if s.Len() != 1 {
		t.Error("Recurring task should stay scheduled")
	}
	if due, ok := s.NextDue("tick"); !ok || !due.After(time.Now().Add(-40*time.Millisecond)) {
		t.Errorf("Unexpected next due %v", due)
	}

	if err := s.Every("bad", time.Now(), 0, nil); err == nil {
		t.Error("Expected an error for a zero interval")
	}
}

func TestScheduler_RunWaitsForJobs(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	var finished atomic.Bool
	s.At("slow", time.Now(), func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done
	if !finished.Load() {
		t.Error("Run returned before the running job finished")
	}
}
