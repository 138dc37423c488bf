package flow

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback. Stop reports whether it prevented the call.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay. Flows use it for every
// countdown and delayed redirect so the callbacks can be cancelled on Close.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc. Callbacks run on their own goroutine.
var RealScheduler Scheduler = realScheduler{}

// ManualScheduler is a virtual clock: callbacks only run inside Advance, on the
// caller's goroutine, in due-time order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, running every callback that becomes
// due, including callbacks scheduled by callbacks.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d

	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}

	s.now = target
	s.compact()
	s.mu.Unlock()
}

// Elapsed is the virtual time since the scheduler was created.
func (s *ManualScheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending counts callbacks that are neither fired nor stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.pending {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range s.pending {
		if !t.fired && !t.stopped && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

func (s *ManualScheduler) compact() {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	s.pending = live
}
