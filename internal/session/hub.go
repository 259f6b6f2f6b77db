package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/mapdoc"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/tileset"
	"hexloom/editor/logging"
	editorlog "hexloom/editor/logging/editor"
)

const (
	tickMetricKey            = "session_tick"
	commandsAppliedMetricKey = "session_commands_applied_total"
	commandErrorsMetricKey   = "session_command_errors_total"
	pendingTasksMetricKey    = "session_pending_tasks"
	subscribersMetricKey     = "session_subscribers"
	stateBroadcastsMetricKey = "session_state_broadcasts_total"
	slowClientDropsMetricKey = "session_slow_clients_dropped_total"
)

// Hub owns the scene graph and all live editor state. Mutations happen
// on the loop goroutine via Advance; Enqueue and the snapshot accessors
// are safe from any goroutine.
type Hub struct {
	mu     sync.RWMutex
	deps   Deps
	graph  *scene.Graph
	buffer *CommandBuffer

	mapRoot       scene.ID
	mapOpen       bool
	mapGen        uint64
	mapPath       string
	unsaved       bool
	activeLayer   scene.ID
	activeTileset scene.ID

	tick        uint64
	dirty       bool
	pending     []*pendingTask
	subscribers map[string]*Subscriber

	nextClient atomic.Uint64
	dropTotal  atomic.Uint64
}

// NewHub creates a hub with an empty scene graph and no open map.
func NewHub(deps Deps, commandCapacity int) *Hub {
	deps = deps.normalized()
	h := &Hub{
		deps:        deps,
		graph:       scene.NewGraph(),
		subscribers: make(map[string]*Subscriber),
	}
	h.buffer = NewCommandBuffer(commandCapacity, deps.Metrics)
	return h
}

// Enqueue stages a command for the next tick. It never blocks; past
// capacity the oldest staged command is evicted and reported.
func (h *Hub) Enqueue(cmd Command) error {
	if cmd.Type == "" {
		return ErrUnknownCommand
	}
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = h.deps.Clock.Now()
	}
	evicted, overflowed := h.buffer.Append(cmd)
	if overflowed {
		total := h.dropTotal.Add(1)
		if total&(total-1) == 0 {
			h.deps.Logger.Printf("[backpressure] dropping command type=%s count=%d capacity=%d",
				evicted.Type, total, h.buffer.Capacity())
		}
		editorlog.CommandDropped(context.Background(), h.deps.Publisher, h.Tick(),
			logging.EntityRef{ID: evicted.ClientID, Kind: logging.EntityKindSession},
			editorlog.CommandDroppedPayload{Op: string(evicted.Type), Dropped: total}, nil)
	}
	return nil
}

// Subscribe registers a new client and queues its welcome message.
func (h *Hub) Subscribe() *Subscriber {
	id := fmt.Sprintf("client-%d", h.nextClient.Add(1))
	sub := &Subscriber{id: id, ch: make(chan Outbound, subscriberQueueSize)}

	h.mu.Lock()
	snap := h.snapshotLocked()
	h.subscribers[id] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	sub.ch <- Outbound{Kind: OutboundWelcome, Tick: snap.Tick, Welcome: &Welcome{ClientID: id, State: snap}}
	h.deps.Metrics.Store(subscribersMetricKey, uint64(count))
	return sub
}

// Unsubscribe drops a client and closes its outbound queue. It is safe
// to call for an already-dropped client.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		close(sub.ch)
	}
	h.deps.Metrics.Store(subscribersMetricKey, uint64(count))
}

// TickResult reports what one Advance call did. The loop fills in the
// timing fields.
type TickResult struct {
	Tick         uint64
	Delta        float64
	Commands     int
	Outcomes     int
	Broadcast    bool
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
}

// Advance runs one tick: drain and apply staged commands, poll pending
// tasks, broadcast journal outcomes and, when state changed, a fresh
// snapshot.
func (h *Hub) Advance(now time.Time, tick uint64, dt float64) TickResult {
	commands := h.buffer.Drain()

	h.mu.Lock()
	h.tick = tick
	for _, cmd := range commands {
		cmd.OriginTick = tick
		h.applyLocked(cmd, now)
	}
	h.pollPendingLocked(now)

	outcomes := h.deps.Journal.Drain()
	if len(outcomes) > 0 {
		h.broadcastLocked(Outbound{Kind: OutboundEvent, Tick: tick, Outcomes: outcomes})
	}
	broadcast := false
	if h.dirty {
		snap := h.snapshotLocked()
		h.broadcastLocked(Outbound{Kind: OutboundState, Tick: tick, State: &snap})
		h.dirty = false
		broadcast = true
		h.deps.Metrics.Add(stateBroadcastsMetricKey, 1)
	}
	pendingCount := len(h.pending)
	h.mu.Unlock()

	h.deps.Metrics.Store(tickMetricKey, tick)
	h.deps.Metrics.Store(pendingTasksMetricKey, uint64(pendingCount))
	if len(commands) > 0 {
		h.deps.Metrics.Add(commandsAppliedMetricKey, uint64(len(commands)))
	}
	return TickResult{Tick: tick, Delta: dt, Commands: len(commands), Outcomes: len(outcomes), Broadcast: broadcast}
}

// applyLocked dispatches one command and reports failures back to the
// issuing client.
func (h *Hub) applyLocked(cmd Command, now time.Time) {
	err := h.dispatchLocked(cmd, now)
	if err == nil {
		return
	}
	h.deps.Logger.Printf("command %s from %s rejected: %v", cmd.Type, cmd.ClientID, err)
	h.deps.Metrics.Add(commandErrorsMetricKey, 1)
	h.replyLocked(cmd.ClientID, Outbound{
		Kind: OutboundError,
		Tick: h.tick,
		Err:  &CommandError{Seq: cmd.Seq, Op: string(cmd.Type), Reason: err.Error()},
	})
}

// broadcastLocked queues a message for every subscriber. A client whose
// queue is full is dropped on the spot.
func (h *Hub) broadcastLocked(msg Outbound) {
	for id, sub := range h.subscribers {
		select {
		case sub.ch <- msg:
		default:
			delete(h.subscribers, id)
			close(sub.ch)
			h.deps.Logger.Printf("dropping slow client %s", id)
			h.deps.Metrics.Add(slowClientDropsMetricKey, 1)
		}
	}
	h.deps.Metrics.Store(subscribersMetricKey, uint64(len(h.subscribers)))
}

// replyLocked queues a message for one client, if still subscribed.
func (h *Hub) replyLocked(clientID string, msg Outbound) {
	sub, ok := h.subscribers[clientID]
	if !ok {
		return
	}
	select {
	case sub.ch <- msg:
	default:
		delete(h.subscribers, clientID)
		close(sub.ch)
		h.deps.Logger.Printf("dropping slow client %s", clientID)
		h.deps.Metrics.Add(slowClientDropsMetricKey, 1)
	}
}

// Tick reports the last completed tick.
func (h *Hub) Tick() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tick
}

// Snapshot builds the client-visible state under the read lock.
func (h *Hub) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked()
}

// Status summarizes the session for the status endpoint.
func (h *Hub) Status() Status {
	h.mu.RLock()
	status := Status{
		Tick:         h.tick,
		Clients:      len(h.subscribers),
		MapOpen:      h.mapOpen,
		Path:         h.mapPath,
		Unsaved:      h.unsaved,
		PendingTasks: len(h.pending),
	}
	if h.mapOpen {
		for _, child := range h.graph.Children(h.mapRoot) {
			if _, ok := scene.Get[*tileset.Tileset](h.graph, child); ok {
				status.Tilesets++
				continue
			}
			if _, ok := scene.Get[mapdoc.Layer](h.graph, child); ok {
				status.Layers++
				status.Placements += len(h.graph.Children(child))
			}
		}
	}
	h.mu.RUnlock()

	status.QueueDepth = h.buffer.Len()
	status.Journal = h.deps.Journal.Snapshot()
	return status
}

// actorFor builds the logging actor reference for a command.
func actorFor(cmd Command) logging.EntityRef {
	if cmd.ClientID == "" {
		return logging.EntityRef{ID: "editor", Kind: logging.EntityKindEditor}
	}
	return logging.EntityRef{ID: cmd.ClientID, Kind: logging.EntityKindSession}
}

// layoutLocked returns the open map's grid layout.
func (h *Hub) layoutLocked() grid.Layout {
	if layout, ok := scene.Get[grid.Layout](h.graph, h.mapRoot); ok {
		return layout
	}
	return grid.DefaultLayout()
}
