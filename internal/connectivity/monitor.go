// Package connectivity watches network presence and keeps a single offline
// warning in sync with it.
//
// The monitor is driven by online/offline events. Events come from a polling
// Prober once Start is called, and may also be injected directly through
// HandleOnline and HandleOffline.
package connectivity

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/derickschaefer/weatherfinder/internal/notify"
)

const (
	// WarningKey identifies the offline warning in the notifier.
	WarningKey = "offline"

	// WarningMessage is the text of the offline warning.
	WarningMessage = "You are offline. Check your internet connection."

	DefaultInterval = 5 * time.Second
)

// ErrAlreadyStarted is returned by Start on a running monitor.
var ErrAlreadyStarted = errors.New("connectivity monitor already started")

// Notifier shows and dismisses persistent messages by key.
type Notifier interface {
	Show(key string, level notify.Level, msg string)
	Dismiss(key string)
}

// Prober reports whether the network is currently reachable.
type Prober interface {
	Probe(ctx context.Context) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) bool

func (f ProberFunc) Probe(ctx context.Context) bool { return f(ctx) }

// DialProber considers the network online when a TCP connection to Addr
// can be opened within Timeout.
type DialProber struct {
	Addr    string
	Timeout time.Duration
}

// Probe dials Addr and closes the connection immediately.
func (p DialProber) Probe(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		slog.Debug("connectivity probe failed", "addr", p.Addr, "err", err)
		return false
	}
	conn.Close()
	return true
}

// Monitor tracks whether the offline warning is displayed.
type Monitor struct {
	prober   Prober
	notifier Notifier
	interval time.Duration

	mu        sync.Mutex
	displayed bool
	online    bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewMonitor returns a stopped monitor. interval <= 0 uses DefaultInterval.
func NewMonitor(prober Prober, notifier Notifier, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		prober:   prober,
		notifier: notifier,
		interval: interval,
		online:   true,
	}
}

// Start performs one synchronous check and then polls the prober in the
// background until Stop is called or ctx ends.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	online := m.prober.Probe(ctx)
	m.apply(online)

	go m.loop(ctx, done)
	return nil
}

// Stop ends polling and waits for the loop to exit. The warning state is
// left as it is. Stop on a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			online := m.prober.Probe(ctx)
			if ctx.Err() != nil {
				return
			}
			// only transitions are events; injected events count as the
			// current state
			if online != m.Online() {
				m.apply(online)
			}
		}
	}
}

func (m *Monitor) apply(online bool) {
	if online {
		m.HandleOnline()
	} else {
		m.HandleOffline()
	}
}

// HandleOffline shows the warning unless it is already displayed.
func (m *Monitor) HandleOffline() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = false
	if m.displayed {
		return
	}
	m.notifier.Show(WarningKey, notify.LevelWarning, WarningMessage)
	m.displayed = true
	slog.Debug("network offline")
}

// HandleOnline dismisses the warning and clears the displayed record.
func (m *Monitor) HandleOnline() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = true
	m.notifier.Dismiss(WarningKey)
	if m.displayed {
		slog.Debug("network online")
	}
	m.displayed = false
}

// Online reports the last observed network state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// WarningDisplayed reports whether the offline warning is shown.
func (m *Monitor) WarningDisplayed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.displayed
}
