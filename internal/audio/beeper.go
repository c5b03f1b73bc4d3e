package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// ErrNoPlayer is returned when no system audio player can be found.
var ErrNoPlayer = errors.New("no audio player available")

// ErrNoContext is recorded when a ContextFactory returns neither a context
// nor an error.
var ErrNoContext = errors.New("audio context factory returned no context")

// Context plays encoded WAV data.
type Context interface {
	Play(ctx context.Context, wav []byte) error
}

// ContextFactory creates the audio context on first use.
type ContextFactory func() (Context, error)

// Beeper plays the success cue. The audio context is created lazily on the
// first Beep and reused for the life of the process; it is never torn down.
// All failures are non-fatal: the cue is skipped and the cause logged.
type Beeper struct {
	factory ContextFactory
	wav     []byte

	once    sync.Once
	ctx     Context
	initErr error
}

// NewBeeper returns a Beeper playing tone through contexts built by factory.
// A nil factory uses NewSystemContext.
func NewBeeper(tone Tone, factory ContextFactory) *Beeper {
	if factory == nil {
		factory = NewSystemContext
	}
	return &Beeper{factory: factory, wav: tone.WAV()}
}

// Beep plays the tone once. It reports whether the tone was played.
func (b *Beeper) Beep(ctx context.Context) bool {
	b.once.Do(func() {
		b.ctx, b.initErr = b.factory()
		if b.initErr == nil && b.ctx == nil {
			b.initErr = ErrNoContext
		}
	})
	if b.initErr != nil {
		slog.Debug("audio unavailable, skipping cue", "err", b.initErr)
		return false
	}
	if err := b.ctx.Play(ctx, b.wav); err != nil {
		slog.Debug("audio playback failed", "err", err)
		return false
	}
	return true
}

// ─── System player ────────────────────────────────────────────────────────────

// players are tried in order; the first one on PATH wins.
var players = [][]string{
	{"paplay"},
	{"aplay", "-q"},
	{"afplay"},
}

// SystemContext plays WAV data by handing a temporary file to a command-line
// player.
type SystemContext struct {
	argv []string
}

// NewSystemContext locates a player on PATH.
func NewSystemContext() (Context, error) {
	for _, p := range players {
		if path, err := exec.LookPath(p[0]); err == nil {
			argv := append([]string{path}, p[1:]...)
			return &SystemContext{argv: argv}, nil
		}
	}
	return nil, ErrNoPlayer
}

// Play writes wav to a temporary file and runs the player on it.
func (s *SystemContext) Play(ctx context.Context, wav []byte) error {
	f, err := os.CreateTemp("", "weatherfinder-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(wav); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	args := append(append([]string{}, s.argv[1:]...), f.Name())
	cmd := exec.CommandContext(ctx, s.argv[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", s.argv[0], err, out)
	}
	return nil
}
