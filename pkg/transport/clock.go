// Package transport drives simulated playback with a cancellable beat clock
package transport

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"
)

// DefaultBPM is used when a tune's tempo is not numeric
const DefaultBPM = 120.0

// ErrRunning is returned by Start when the clock is already running
var ErrRunning = errors.New("clock already running")

// Tick is one beat advance. Seq counts ticks since Start and is strictly
// increasing; Beat is the playhead after the advance.
type Tick struct {
	Seq  uint64
	Beat float64
	At   time.Time
}

// Options configures a Clock
type Options struct {
	BPM float64
	// TotalBeats is the loop length. Zero means never wrap.
	TotalBeats float64
	// OnTick runs on the clock goroutine. It must not call Stop.
	OnTick func(Tick)
	Logger *slog.Logger
}

// Clock advances a beat counter once per beat period
type Clock struct {
	period time.Duration
	total  float64
	onTick func(Tick)
	logger *slog.Logger

	mu     sync.Mutex
	beat   float64
	seq    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClock creates a stopped clock at beat 0
func NewClock(opts Options) *Clock {
	bpm := opts.BPM
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Clock{
		period: time.Duration(float64(time.Minute) / bpm),
		total:  opts.TotalBeats,
		onTick: opts.OnTick,
		logger: logger,
	}
}

// Period is the time between ticks
func (c *Clock) Period() time.Duration {
	return c.period
}

// Start runs the clock until ctx is done or Stop is called
func (c *Clock) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runningLocked() {
		return ErrRunning
	}
	if c.cancel != nil {
		// ctx ended on its own; release it before restarting
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.seq = 0

	go c.run(ctx, c.done)
	c.logger.Debug("clock started", "period", c.period, "total_beats", c.total)
	return nil
}

func (c *Clock) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.mu.Lock()
			// Stop may have won the race for the lock.
			if ctx.Err() != nil {
				c.mu.Unlock()
				return
			}
			c.seq++
			c.beat = advance(c.beat, c.total)
			tick := Tick{Seq: c.seq, Beat: c.beat, At: now}
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(tick)
			}
		}
	}
}

// advance moves one beat forward, wrapping at total
func advance(beat, total float64) float64 {
	next := beat + 1
	if total > 0 {
		next = math.Mod(next, total)
	}
	return next
}

// Stop halts the clock and waits for the goroutine to exit, so no tick is
// delivered after Stop returns. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.logger.Debug("clock stopped")
}

// Beat returns the current playhead
func (c *Clock) Beat() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beat
}

// Running reports whether the clock goroutine is active
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runningLocked()
}

func (c *Clock) runningLocked() bool {
	if c.done == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Reset moves the playhead back to beat 0
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beat = 0
}
