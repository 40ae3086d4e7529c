// Package simulator generates the synthetic soil, water and weather tables.
//
// Every record is drawn from its own random stream keyed by the record's
// position, so generation is split across a bounded worker pool without
// changing the output.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smukkama/agrisense/internal/sampling"
)

// SpanHours is the two-year window every table covers
const SpanHours = 2 * 365 * 24

// chunkSize is the number of records one worker task generates
const chunkSize = 512

// DefaultStart is the first hour of the simulated window
var DefaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrInvalidOptions is returned by New for unusable options
var ErrInvalidOptions = errors.New("invalid simulator options")

// Options configures a Simulator
type Options struct {
	Seed    uint64
	Workers int
	Start   time.Time
}

// Simulator owns the seeded source and worker limit shared by the
// soil, water and weather generators.
type Simulator struct {
	src     sampling.Source
	workers int
	start   time.Time
}

// New creates a simulator. A zero Start means DefaultStart.
func New(opts Options) (*Simulator, error) {
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidOptions, opts.Workers)
	}
	start := opts.Start
	if start.IsZero() {
		start = DefaultStart
	}
	return &Simulator{
		src:     sampling.New(opts.Seed),
		workers: opts.Workers,
		start:   start.UTC(),
	}, nil
}

// Source returns the seeded source, for stages that draw further noise
func (s *Simulator) Source() sampling.Source {
	return s.src
}

// Start returns the first hour of the simulated window
func (s *Simulator) Start() time.Time {
	return s.start
}

// Soil returns the soil sensor generator
func (s *Simulator) Soil() *Soil {
	return &Soil{sim: s}
}

// Water returns the water quality generator
func (s *Simulator) Water() *Water {
	return &Water{sim: s}
}

// Weather returns the weather station generator
func (s *Simulator) Weather() *Weather {
	return &Weather{sim: s}
}

// parallel runs fn for every index in [0, n) on the worker pool
func (s *Simulator) parallel(ctx context.Context, n int, fn func(i int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				fn(i)
			}
			return nil
		})
	}
	return g.Wait()
}

// randomTimestamps draws n hour offsets uniformly over the window and
// returns them sorted ascending.
func (s *Simulator) randomTimestamps(ctx context.Context, domain sampling.Domain, n int) ([]time.Time, error) {
	ts := make([]time.Time, n)
	err := s.parallel(ctx, n, func(i int) {
		r := s.src.Stream(domain, i)
		ts[i] = s.start.Add(time.Duration(r.IntN(SpanHours)) * time.Hour)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draw timestamps: %w", err)
	}
	slices.SortFunc(ts, func(a, b time.Time) int { return a.Compare(b) })
	return ts, nil
}
