package session

import "hexloom/editor/internal/journal"

// OutboundKind discriminates messages queued for a subscriber.
type OutboundKind string

const (
	OutboundWelcome OutboundKind = "welcome"
	OutboundState   OutboundKind = "state"
	OutboundEvent   OutboundKind = "event"
	OutboundFiles   OutboundKind = "files"
	OutboundError   OutboundKind = "error"
)

// Welcome is the first message a subscriber receives.
type Welcome struct {
	ClientID string   `json:"clientId"`
	State    Snapshot `json:"state"`
}

// FileListing answers a ListFiles command for one client.
type FileListing struct {
	Path  string   `json:"path,omitempty"`
	Files []string `json:"files"`
}

// CommandError reports a command that failed validation or application.
type CommandError struct {
	Seq    uint64 `json:"seq,omitempty"`
	Op     string `json:"op,omitempty"`
	Reason string `json:"reason"`
}

// Outbound is one message queued for delivery to a subscriber. Exactly
// one payload matching Kind is set.
type Outbound struct {
	Kind     OutboundKind
	Tick     uint64
	Welcome  *Welcome
	State    *Snapshot
	Outcomes []journal.Outcome
	Files    *FileListing
	Err      *CommandError
}

// subscriberQueueSize bounds a client's outbound queue. A client that
// stays this far behind the loop is disconnected.
const subscriberQueueSize = 32

// Subscriber is one connected client's outbound queue. The hub closes
// the channel when the client is dropped; the transport treats a closed
// channel as an order to close the connection.
type Subscriber struct {
	id string
	ch chan Outbound
}

// ID returns the client identifier assigned at subscribe time.
func (s *Subscriber) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Outbound returns the channel the transport's write pump consumes.
func (s *Subscriber) Outbound() <-chan Outbound {
	if s == nil {
		return nil
	}
	return s.ch
}
