package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/logging"
)

// StatsInterval is how often stream statistics are refreshed.
const StatsInterval = 60 * time.Second

// ZeroUptime is shown while the stream is offline.
const ZeroUptime = "00:00:00"

// FormatUptime renders d as HH:MM:SS. Hours grow past two digits.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Uptime is the stream clock.
type Uptime struct {
	mu      sync.Mutex
	start   time.Time
	running bool
	now     Clock
}

// NewUptime creates a stopped clock.
func NewUptime() *Uptime {
	return &Uptime{now: time.Now}
}

// Start runs the clock from startedAt, restarting it if already running.
func (u *Uptime) Start(startedAt time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.start = startedAt
	u.running = true
}

// Stop halts the clock. Stopping a stopped clock is a no-op.
func (u *Uptime) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.running = false
	u.start = time.Time{}
}

// Running reports whether the clock is running.
func (u *Uptime) Running() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.running
}

// Elapsed returns the time since the stream started, or zero when stopped.
func (u *Uptime) Elapsed() time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.running {
		return 0
	}
	return u.now().Sub(u.start)
}

func (u *Uptime) String() string {
	if !u.Running() {
		return ZeroUptime
	}
	return FormatUptime(u.Elapsed())
}

// StatsSource fetches stream statistics.
type StatsSource interface {
	StreamStats(ctx context.Context) (*api.StreamStats, error)
}

// Stats is the displayed stream state.
type Stats struct {
	Online    bool
	Viewers   int
	Err       error
	UpdatedAt time.Time
}

// StatsPoller keeps Stats and the uptime clock current.
type StatsPoller struct {
	src      StatsSource
	uptime   *Uptime
	interval time.Duration
	onUpdate func(Stats)
	now      Clock

	mu   sync.Mutex
	last Stats
}

// NewStatsPoller creates a poller. onUpdate may be nil.
func NewStatsPoller(src StatsSource, uptime *Uptime, onUpdate func(Stats)) *StatsPoller {
	return &StatsPoller{
		src:      src,
		uptime:   uptime,
		interval: StatsInterval,
		onUpdate: onUpdate,
		now:      time.Now,
	}
}

// Stats returns the last known state.
func (p *StatsPoller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Uptime returns the clock driven by this poller.
func (p *StatsPoller) Uptime() *Uptime {
	return p.uptime
}

// Refresh fetches statistics once. Online starts the clock when the start
// time is known; offline stops it and zeroes viewers. A failed fetch keeps the previous values and
// records the error.
func (p *StatsPoller) Refresh(ctx context.Context) Stats {
	stats, err := p.src.StreamStats(ctx)

	p.mu.Lock()
	next := p.last
	next.UpdatedAt = p.now()
	next.Err = err
	if err == nil {
		next.Online = stats.Online()
		if next.Online {
			next.Viewers = stats.ViewerCount
			// Without started_at the clock keeps its previous start, or
			// stays at zero.
			if !stats.StartedAt.IsZero() {
				p.uptime.Start(stats.StartedAt)
			}
		} else {
			next.Viewers = 0
			p.uptime.Stop()
		}
	} else {
		logging.Warn("Failed to refresh stream stats", zap.Error(err))
	}
	p.last = next
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(next)
	}
	return next
}

// Run refreshes immediately and then every interval until ctx is done.
func (p *StatsPoller) Run(ctx context.Context) {
	p.Refresh(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}
