// Package clock abstracts the source of "now" so the date-driven period
// and rollover logic can be tested deterministically.
package clock

import "time"

// Clock is a source of the current time.
type Clock interface {
	Now() time.Time
}

// System returns the wall clock.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Fake is a settable clock for tests.
type Fake struct {
	now time.Time
}

// NewFake returns a Fake clock frozen at t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now returns the frozen time.
func (f *Fake) Now() time.Time { return f.now }

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) { f.now = t }

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) { f.now = f.now.Add(d) }
