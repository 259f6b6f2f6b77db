package session

import (
	"time"

	"hexloom/editor/logging"
)

// LoopConfig tunes the fixed-timestep editor loop.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
}

// Hooks lets the embedding process observe loop progress.
type Hooks struct {
	AfterStep func(TickResult)
}

// Loop drives a hub at a fixed tick rate on its own goroutine. All
// state mutation funnels through the hub's Advance call.
type Loop struct {
	hub    *Hub
	config LoopConfig
	hooks  Hooks
}

// NewLoop wraps a hub with tick orchestration.
func NewLoop(hub *Hub, cfg LoopConfig, hooks Hooks) *Loop {
	if hub == nil {
		return nil
	}
	return &Loop{hub: hub, config: cfg, hooks: hooks}
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	if tickRate <= 0 {
		tickRate = 15
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	clock := l.hub.deps.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}
	last := clock.Now()
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}
	budget := time.Second / time.Duration(tickRate)

	var tick uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now
			tick++

			start := clock.Now()
			result := l.hub.Advance(now, tick, dt)
			result.Duration = clock.Now().Sub(start)
			result.Budget = budget
			result.ClampedDelta = clamped

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}
