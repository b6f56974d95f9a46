package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Epoch is the first instant handed out by a StepClock.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a fake wall clock for stored runs. Each call to Now returns
// Epoch plus one more second than the call before.
//
// Thread-safe: Can be called concurrently.
type StepClock struct {
	mu    sync.Mutex
	steps int64
}

// NewStepClock creates a clock whose first Now returns Epoch.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Now returns the next instant.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.steps) * time.Second)
	c.steps++
	return t
}

// Reset rewinds the clock so the next Now returns Epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = 0
}

// SequentialIDs hands out run IDs "run-0001", "run-0002", ... so stored
// runs compare equal across test executions.
//
// Thread-safe: Can be called concurrently.
type SequentialIDs struct {
	mu   sync.Mutex
	next int
}

// NewID returns the next ID.
func (s *SequentialIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("run-%04d", s.next)
}
