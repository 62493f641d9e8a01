package pagination

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates one display frame.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameScheduler runs callbacks on the next frame. Every callback requested
// before a frame fires runs in that frame.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// TimerScheduler is a FrameScheduler driven by a timer: the first request
// arms a frame Interval away, later requests join it.
type TimerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	queue   []func()
	timer   *time.Timer
	stopped bool
}

// NewTimerScheduler creates a scheduler with the given frame interval.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerScheduler{interval: interval}
}

// RequestFrame queues fn for the next frame.
func (s *TimerScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.queue = append(s.queue, fn)
	if s.timer == nil {
		s.timer = time.AfterFunc(s.interval, s.frame)
	}
}

func (s *TimerScheduler) frame() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.timer = nil
	stopped := s.stopped
	s.mu.Unlock()

	if stopped {
		return
	}
	for _, fn := range queue {
		fn()
	}
}

// Stop drops queued callbacks and refuses new ones.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.queue = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// ManualScheduler only runs frames when Flush is called, so tests can step
// through frames by hand.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewManualScheduler creates an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame queues fn until the next Flush.
func (s *ManualScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Pending returns the number of callbacks waiting for a frame.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush runs one frame. Callbacks requested while it runs wait for the next
// Flush. It returns the number of callbacks run.
func (s *ManualScheduler) Flush() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}
