// Package notify implements request.NotificationSink for terminals, logs and
// in-memory toast queues.
package notify

import (
	"sync"
	"time"

	"github.com/icondb/icondb/pkg/store"
	"github.com/rs/xid"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// DefaultDuration is how long a toast stays visible unless told otherwise.
const DefaultDuration = 3 * time.Second

// Toast is one visible notification.
type Toast struct {
	ID        string
	Level     Level
	Title     string
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// ToasterOption configures a Toaster
type ToasterOption func(*Toaster)

// WithDuration sets the lifetime of new toasts. A duration <= 0 keeps toasts
// until they are dismissed.
func WithDuration(d time.Duration) ToasterOption {
	return func(t *Toaster) {
		t.duration = d
	}
}

// WithClock replaces time.Now and time.AfterFunc, for tests.
func WithClock(now func() time.Time, afterFunc func(time.Duration, func()) Timer) ToasterOption {
	return func(t *Toaster) {
		t.now = now
		t.afterFunc = afterFunc
	}
}

// Timer is the subset of *time.Timer the toaster needs.
type Timer interface {
	Stop() bool
}

// Toaster keeps the list of visible toasts and expires them after their
// duration. Observers subscribe to the list through Subscribe.
type Toaster struct {
	toasts    *store.Store[[]Toast]
	duration  time.Duration
	now       func() time.Time
	afterFunc func(time.Duration, func()) Timer

	mu     sync.Mutex
	timers map[string]Timer
}

// NewToaster returns an empty toaster.
func NewToaster(options ...ToasterOption) *Toaster {
	t := &Toaster{
		toasts:   store.New[[]Toast](nil),
		duration: DefaultDuration,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		timers: make(map[string]Timer),
	}

	for _, option := range options {
		option(t)
	}

	return t
}

// Show adds a toast with the toaster's default duration and returns its id.
func (t *Toaster) Show(level Level, title, message string) string {
	return t.ShowFor(level, title, message, t.duration)
}

// ShowFor adds a toast that expires after d.
func (t *Toaster) ShowFor(level Level, title, message string, d time.Duration) string {
	toast := Toast{
		ID:        xid.New().String(),
		Level:     level,
		Title:     title,
		Message:   message,
		Duration:  d,
		CreatedAt: t.now(),
	}

	// A nil entry marks a timer that is being started, so an expiry or
	// dismissal that wins the race is not undone below.
	if d > 0 {
		t.mu.Lock()
		t.timers[toast.ID] = nil
		t.mu.Unlock()
	}

	t.toasts.Update(func(current []Toast) []Toast {
		next := make([]Toast, 0, len(current)+1)
		next = append(next, current...)
		return append(next, toast)
	})

	if d > 0 {
		id := toast.ID
		timer := t.afterFunc(d, func() { t.expire(id) })

		t.mu.Lock()
		if _, pending := t.timers[id]; pending {
			t.timers[id] = timer
		} else {
			timer.Stop()
		}
		t.mu.Unlock()
	}

	return toast.ID
}

// Dismiss removes a toast before it expires. Unknown ids are ignored.
func (t *Toaster) Dismiss(id string) {
	t.mu.Lock()
	if timer, ok := t.timers[id]; ok {
		if timer != nil {
			timer.Stop()
		}
		delete(t.timers, id)
	}
	t.mu.Unlock()

	t.remove(id)
}

// Toasts returns the visible toasts, oldest first.
func (t *Toaster) Toasts() []Toast {
	return append([]Toast(nil), t.toasts.Snapshot()...)
}

// Subscribe calls fn with the visible toasts after every change.
func (t *Toaster) Subscribe(fn func([]Toast)) func() {
	return t.toasts.Subscribe(fn)
}

// Close stops every pending expiry timer.
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		if timer != nil {
			timer.Stop()
		}
		delete(t.timers, id)
	}
}

func (t *Toaster) expire(id string) {
	t.mu.Lock()
	delete(t.timers, id)
	t.mu.Unlock()

	t.remove(id)
}

func (t *Toaster) remove(id string) {
	t.toasts.Update(func(current []Toast) []Toast {
		next := make([]Toast, 0, len(current))
		for _, toast := range current {
			if toast.ID != id {
				next = append(next, toast)
			}
		}
		return next
	})
}

func (t *Toaster) NotifySuccess(title, message string) { t.Show(LevelSuccess, title, message) }
func (t *Toaster) NotifyError(title, message string)   { t.Show(LevelError, title, message) }
func (t *Toaster) NotifyWarning(title, message string) { t.Show(LevelWarning, title, message) }
func (t *Toaster) NotifyInfo(title, message string)    { t.Show(LevelInfo, title, message) }
