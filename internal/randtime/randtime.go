// Package randtime produces uniformly distributed instants within a closed
// calendar-year interval, at second granularity.
package randtime

import (
	"math/rand/v2"
	"time"
)

// Generator draws instants from [start, end] inclusive.
type Generator struct {
	start time.Time
	span  int64 // number of distinct seconds in the interval

	// Int64N is the random source; overridable in tests. Must return a
	// value in [0, n).
	Int64N func(n int64) int64
}

// NewYear covers Jan 1 00:00:00 through Dec 31 23:59:59 of year, UTC.
func NewYear(year int) *Generator {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return New(start, end)
}

// New covers [start, end] inclusive.
func New(start, end time.Time) *Generator {
	return &Generator{
		start:  start,
		span:   int64(end.Sub(start)/time.Second) + 1,
		Int64N: rand.Int64N,
	}
}

// Next returns a random instant in the interval. Both endpoints are
// reachable.
func (g *Generator) Next() time.Time {
	return g.start.Add(time.Duration(g.Int64N(g.span)) * time.Second)
}

// Start returns the interval start.
func (g *Generator) Start() time.Time { return g.start }

// End returns the interval end.
func (g *Generator) End() time.Time {
	return g.start.Add(time.Duration(g.span-1) * time.Second)
}
