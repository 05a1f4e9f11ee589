// Package notify holds a single transient message that hides itself after a
// fixed duration. Showing a new message replaces the current one and restarts
// the countdown.
package notify

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/userdesk/internal/client/models"
)

// DefaultDuration is how long a message stays visible unless configured.
const DefaultDuration = 3 * time.Second

// Timer owns one notification surface. The zero value is not usable; use New.
type Timer struct {
	mu       sync.Mutex
	duration time.Duration
	current  models.Notification
	gen      uint64
	timer    *time.Timer
	onChange func(models.Notification)

	// afterFunc is swapped in tests.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// New returns a Timer that hides messages after d. Non-positive d falls back
// to DefaultDuration.
func New(d time.Duration) *Timer {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Timer{duration: d, afterFunc: time.AfterFunc}
}

// OnChange registers fn to be called after every visible change. fn runs
// without the timer's lock held, possibly on a timer goroutine.
func (t *Timer) OnChange(fn func(models.Notification)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Show displays message for the configured duration.
func (t *Timer) Show(message string, severity models.Severity) {
	t.ShowFor(message, severity, t.duration)
}

// ShowFor displays message for d, replacing whatever is visible. The hide
// scheduled by an earlier call is cancelled.
func (t *Timer) ShowFor(message string, severity models.Severity, d time.Duration) {
	if d <= 0 {
		d = t.duration
	}

	t.mu.Lock()
	t.stopLocked()
	t.gen++
	gen := t.gen
	t.current = models.Notification{Visible: true, Message: message, Severity: severity}
	t.timer = t.afterFunc(d, func() { t.expire(gen) })
	n, fn := t.current, t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

// Hide clears the notification immediately.
func (t *Timer) Hide() {
	t.mu.Lock()
	t.stopLocked()
	t.gen++
	changed := t.current.Visible
	t.current = models.Notification{}
	n, fn := t.current, t.onChange
	t.mu.Unlock()

	if changed && fn != nil {
		fn(n)
	}
}

// Current returns a snapshot of the notification.
func (t *Timer) Current() models.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// expire hides the message shown under generation gen. A timer that already
// fired when it was stopped still reaches here; the generation check drops it.
func (t *Timer) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.current = models.Notification{}
	n, fn := t.current, t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

func (t *Timer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
