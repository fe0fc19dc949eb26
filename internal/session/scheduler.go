package session

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call from running. It reports false if the call
	// already ran or was already stopped.
	Stop() bool
}

// Scheduler runs a function once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// RealScheduler schedules on the runtime timer heap.
var RealScheduler Scheduler = realScheduler{}

// ManualScheduler is a Scheduler driven by explicit Advance calls.
// Scheduled functions run on the goroutine that calls Advance or FireAll.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	seq     int
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, seq: s.seq, at: s.now + d, fn: fn}
	s.pending = append(s.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d and runs every call that came due,
// in due-time order.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	due := s.takeDueLocked(s.now)
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// FireAll runs every pending call regardless of its due time.
func (s *ManualScheduler) FireAll() int {
	s.mu.Lock()
	due := s.takeDueLocked(-1)
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Pending returns the number of calls that have neither run nor been stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// takeDueLocked removes and returns live timers due at or before now.
// A negative now takes every live timer.
func (s *ManualScheduler) takeDueLocked(now time.Duration) []*manualTimer {
	var due, keep []*manualTimer
	for _, t := range s.pending {
		switch {
		case t.stopped || t.fired:
		case now < 0 || t.at <= now:
			t.fired = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	s.pending = keep
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due
}
