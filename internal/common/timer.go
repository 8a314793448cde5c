// Package common provides small shared helpers for timing and runtime stats.
package common

import (
	"fmt"
	"time"
)

// Timer measures one stage. Name is used as the metrics label.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer starts an unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer starts a timer labelled name.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop records and returns the time since the timer started. Calling Stop
// again re-measures from the same start.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the value recorded by the last Stop.
func (t *Timer) Duration() time.Duration { return t.duration }

// Name returns the timer label.
func (t *Timer) Name() string { return t.name }

func (t *Timer) String() string {
	if t.name == "" {
		return t.duration.String()
	}
	return fmt.Sprintf("%s: %v", t.name, t.duration)
}

// Measure runs fn and returns how long it took.
func Measure(fn func()) time.Duration {
	t := NewTimer()
	fn()
	return t.Stop()
}
