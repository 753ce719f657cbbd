package search

import (
	"sync"
	"time"
)

// Scheduler holds at most one pending call. Schedule always cancels the previous
// one before arming the next.
type Scheduler interface {
	Schedule(d time.Duration, f func())
	Stop()
}

// TimerScheduler is the time.AfterFunc backed Scheduler.
type TimerScheduler struct {
	mu sync.Mutex
	t  *time.Timer
}

var _ Scheduler = (*TimerScheduler)(nil)

func (s *TimerScheduler) Schedule(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
	}
	s.t = time.AfterFunc(d, f)
}

func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
}
