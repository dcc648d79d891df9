package game

import (
	"log"
	"time"

	"github.com/SamSnead85/622-sub012/internal/model"
)

// RoomTracker is the transport-side view of which sessions have
// connection groups. The reaper prunes it in step with the registry.
type RoomTracker interface {
	RoomCodes() []string
	DropRoom(code string)
}

// Reaper sweeps abandoned sessions on a fixed interval so the in-memory
// registry stays bounded. Sessions that are actively playing are never
// removed by age; they end through normal game completion.
type Reaper struct {
	engine   *Engine
	tracker  RoomTracker
	interval time.Duration
	idleFor  time.Duration
	stop     chan struct{}
}

const (
	DefaultReapInterval = time.Minute
	DefaultIdleFor      = 10 * time.Minute
)

// NewReaper creates a reaper over the engine's registry and the
// transport's room mappings.
func NewReaper(engine *Engine, tracker RoomTracker, interval, idleFor time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if idleFor <= 0 {
		idleFor = DefaultIdleFor
	}
	return &Reaper{
		engine:   engine,
		tracker:  tracker,
		interval: interval,
		idleFor:  idleFor,
		stop:     make(chan struct{}),
	}
}

// Run blocks, sweeping until Stop is called. Start it on its own
// goroutine.
func (r *Reaper) Run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stop:
			return
		}
	}
}

// Stop terminates Run.
func (r *Reaper) Stop() {
	close(r.stop)
}

// Sweep performs one pass. Transport mappings whose session is already
// gone are pruned first, then idle non-playing sessions are removed from
// both sides.
func (r *Reaper) Sweep() {
	for _, code := range r.tracker.RoomCodes() {
		meta, err := r.engine.Meta(code)
		if err != nil {
			// Session already dropped; the mapping is stale.
			r.tracker.DropRoom(code)
			continue
		}
		if meta.Status == model.StatusPlaying {
			continue
		}
		if time.Since(meta.RoundStartedAt) > r.idleFor {
			r.engine.Remove(code)
			r.tracker.DropRoom(code)
		}
	}

	// Sessions nobody is connected to have no room mapping at all;
	// catch those straight from the registry.
	if removed := r.engine.ReapIdle(r.idleFor); len(removed) > 0 {
		log.Printf("reaper: removed %d idle sessions", len(removed))
		for _, code := range removed {
			r.tracker.DropRoom(code)
		}
	}
}
