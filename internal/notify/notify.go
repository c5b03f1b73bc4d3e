// Package notify provides keyed, persistent terminal notifications.
// A notification stays active until it is dismissed by key; showing a key
// that is already active replaces its message instead of adding another.
package notify

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Level marks how a notification is presented.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notification is one active message.
type Notification struct {
	Key     string
	Level   Level
	Message string
	Shown   time.Time
}

// Toaster writes notifications to w and tracks which keys are active.
// It is safe for concurrent use.
type Toaster struct {
	mu     sync.Mutex
	w      io.Writer
	active map[string]Notification
}

// NewToaster returns a Toaster writing to w. A nil w discards output.
func NewToaster(w io.Writer) *Toaster {
	if w == nil {
		w = io.Discard
	}
	return &Toaster{w: w, active: make(map[string]Notification)}
}

// Show displays msg under key until Dismiss(key) is called.
func (t *Toaster) Show(key string, level Level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[key] = Notification{Key: key, Level: level, Message: msg, Shown: time.Now()}
	fmt.Fprintf(t.w, "%s %s\n", prefix(level), msg)
}

// Dismiss removes the notification with key. Dismissing an unknown key is a
// no-op and prints nothing.
func (t *Toaster) Dismiss(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.active[key]
	if !ok {
		return
	}
	delete(t.active, key)
	fmt.Fprintf(t.w, "✓  %s cleared\n", n.Key)
}

// IsActive reports whether key is currently shown.
func (t *Toaster) IsActive(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[key]
	return ok
}

// Active returns the active notifications sorted by key.
func (t *Toaster) Active() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Notification, 0, len(t.active))
	for _, n := range t.active {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func prefix(l Level) string {
	if l == LevelWarning {
		return "⚠ "
	}
	return "ℹ "
}
