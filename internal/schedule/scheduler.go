// Package schedule runs one-shot and recurring jobs ordered by a min-heap
// of due times.
package schedule

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is the work run when a task is due
type Job func(ctx context.Context) error

type task struct {
	id    string
	due   time.Time
	every time.Duration // zero for one-shot tasks
	job   Job
	index int
}

// taskHeap is a min-heap of tasks ordered by due time
type taskHeap []*task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].due.Before(h[j].due) }

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler keeps tasks by id; scheduling an existing id replaces it
type Scheduler struct {
	mu     sync.Mutex
	heap   taskHeap
	tasks  map[string]*task
	wakeup chan struct{}
	jobs   sync.WaitGroup
}

// New creates an empty scheduler
func New() *Scheduler {
	return &Scheduler{
		tasks:  make(map[string]*task),
		wakeup: make(chan struct{}, 1),
	}
}

// At runs job once at the given time
func (s *Scheduler) At(id string, due time.Time, job Job) {
	s.add(&task{id: id, due: due, job: job})
}

// Every runs job at first and then every interval after it. Runs missed
// while a job is slow are skipped, not queued.
func (s *Scheduler) Every(id string, first time.Time, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	s.add(&task{id: id, due: first, every: interval, job: job})
	return nil
}

func (s *Scheduler) add(t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tasks[t.id]; ok {
		heap.Remove(&s.heap, existing.index)
	}
	heap.Push(&s.heap, t)
	s.tasks[t.id] = t

	if s.heap[0] == t {
		s.notify()
	}
}

func (s *Scheduler) notify() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// Cancel removes a task; it reports whether the task existed
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	heap.Remove(&s.heap, t.index)
	delete(s.tasks, id)
	return true
}

// Len returns the number of scheduled tasks
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// NextDue returns the due time of a task
func (s *Scheduler) NextDue(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return time.Time{}, false
	}
	return t.due, true
}

// Run executes due tasks until ctx is done, then waits for running jobs
func (s *Scheduler) Run(ctx context.Context) {
	defer s.jobs.Wait()

	for {
		wait := s.dispatch(ctx, time.Now())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-s.wakeup:
			timer.Stop()
		}
	}
}

// dispatch starts every task due at now and returns the wait until the next
func (s *Scheduler) dispatch(ctx context.Context, now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.heap.Len() > 0 && !s.heap[0].due.After(now) {
		t := s.heap[0]
		if t.every > 0 {
			for !t.due.After(now) {
				t.due = t.due.Add(t.every)
			}
			heap.Fix(&s.heap, 0)
		} else {
			heap.Pop(&s.heap)
			delete(s.tasks, t.id)
		}

		s.jobs.Add(1)
		go func(id string, job Job) {
			defer s.jobs.Done()
			if err := job(ctx); err != nil {
				fmt.Printf("Scheduled task %s failed: %v\n", id, err)
			}
		}(t.id, t.job)
	}

	if s.heap.Len() == 0 {
		return 24 * time.Hour
	}
	return s.heap[0].due.Sub(now)
}
