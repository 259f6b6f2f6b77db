package session

import (
	"sync"

	"hexloom/editor/internal/telemetry"
)

const (
	commandBufferOccupancyMetricKey = "session_command_buffer_occupancy"
	commandBufferOverflowMetricKey  = "session_command_buffer_overflow_total"
)

// CommandBuffer stores staged commands in a fixed-size ring. It is safe
// for concurrent producers and a single consumer. When full, Append
// evicts the oldest staged command.
type CommandBuffer struct {
	mu      sync.Mutex
	data    []Command
	head    int
	tail    int
	count   int
	metrics telemetry.Metrics
}

// NewCommandBuffer constructs a ring buffer with the provided capacity.
func NewCommandBuffer(capacity int, metrics telemetry.Metrics) *CommandBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandBuffer{
		data:    make([]Command, capacity),
		metrics: metrics,
	}
}

// Capacity reports the maximum number of commands the buffer can hold.
func (b *CommandBuffer) Capacity() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Append stages a command. When the ring is full the oldest command is
// evicted and returned with overflowed true.
func (b *CommandBuffer) Append(cmd Command) (evicted Command, overflowed bool) {
	if b == nil {
		return Command{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == len(b.data) {
		evicted = b.data[b.head]
		b.head = (b.head + 1) % len(b.data)
		b.count--
		overflowed = true
		if b.metrics != nil {
			b.metrics.Add(commandBufferOverflowMetricKey, 1)
		}
	}
	b.data[b.tail] = cmd
	b.tail = (b.tail + 1) % len(b.data)
	b.count++
	b.storeOccupancyLocked()
	return evicted, overflowed
}

// Drain returns all staged commands in FIFO order and clears the buffer.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	commands := make([]Command, b.count)
	for i := 0; i < b.count; i++ {
		idx := (b.head + i) % len(b.data)
		commands[i] = b.data[idx]
	}
	b.head = 0
	b.tail = 0
	b.count = 0
	b.storeOccupancyLocked()
	return commands
}

// Len reports the number of staged commands.
func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *CommandBuffer) storeOccupancyLocked() {
	if b.metrics == nil {
		return
	}
	b.metrics.Store(commandBufferOccupancyMetricKey, uint64(b.count))
}
