package app

import (
	"sync"
	"time"

	"github.com/vidgrab/vidgrab/internal/domain"
)

// ToastPresenter holds at most one transient message. A newer toast replaces
// the current one and restarts its timer.
type ToastPresenter struct {
	mu       sync.Mutex
	current  *domain.Toast
	timer    *time.Timer
	seq      uint64
	onChange func()
}

// NewToastPresenter creates a presenter; onChange runs after every show or
// expiry without any presenter lock held
func NewToastPresenter(onChange func()) *ToastPresenter {
	return &ToastPresenter{onChange: onChange}
}

// Show displays a toast for ttl; ttl <= 0 keeps it until dismissed
func (t *ToastPresenter) Show(level domain.ToastLevel, message string, ttl time.Duration) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.current = &domain.Toast{Level: level, Message: message}
	if ttl > 0 {
		seq := t.seq
		t.timer = time.AfterFunc(ttl, func() { t.expire(seq) })
	}
	t.mu.Unlock()

	t.notify()
}

// Dismiss hides the current toast
func (t *ToastPresenter) Dismiss() {
	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.current = nil
	t.mu.Unlock()

	t.notify()
}

// Current returns a copy of the visible toast
func (t *ToastPresenter) Current() *domain.Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	toast := *t.current
	return &toast
}

func (t *ToastPresenter) expire(seq uint64) {
	t.mu.Lock()
	if seq != t.seq {
		t.mu.Unlock()
		return
	}
	t.current = nil
	t.timer = nil
	t.mu.Unlock()

	t.notify()
}

func (t *ToastPresenter) notify() {
	if t.onChange != nil {
		t.onChange()
	}
}
