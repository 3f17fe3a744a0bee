package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown    EventType = iota
	EventTypeMatchStart           // New match with its layout
	EventTypeTeleport             // Resolved or rejected jump
	EventTypeKill                 // One enemy killed by a jump
	EventTypeDeath                // Player hit by a projectile
	EventTypeMatchOver            // Death countdown finished
	EventTypeDifficulty           // Minimum bullet time changed
	EventTypePause
	EventTypeResume
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`   // Schema version
	Type      EventType       `json:"type"`      // Event type
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`  // Monotonic sequence
	TickNum   uint64          `json:"tickNum"`   // Match tick this occurred in
	MatchID   string          `json:"matchId"`
	Source    string          `json:"source,omitempty"` // Client that caused it (for rate limiting)
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeMatchStart:
		return "match_start"
	case EventTypeTeleport:
		return "teleport"
	case EventTypeKill:
		return "kill"
	case EventTypeDeath:
		return "death"
	case EventTypeMatchOver:
		return "match_over"
	case EventTypeDifficulty:
		return "difficulty"
	case EventTypePause:
		return "pause"
	case EventTypeResume:
		return "resume"
	default:
		return "unknown"
	}
}

// MarshalText writes the type by name in the JSONL log
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads for different event types

// MatchStartPayload describes a fresh match
type MatchStartPayload struct {
	Tutorial          bool    `json:"tutorial"`
	Enemies           int     `json:"enemies"`
	MinimumBulletTime float64 `json:"minimumBulletTime"`
}

// TeleportPayload contains jump details
type TeleportPayload struct {
	Angle   float64 `json:"angle"`
	FromX   float64 `json:"fromX"`
	FromY   float64 `json:"fromY"`
	ToX     float64 `json:"toX"`
	ToY     float64 `json:"toY"`
	Kills   int     `json:"kills"`
	Outcome string  `json:"outcome"` // kill, miss, invalid, not_ready
}

// KillPayload contains per-kill scoring
type KillPayload struct {
	Chain int     `json:"chain"`
	Score float64 `json:"score"`
}

// DeathPayload contains the final position and score
type DeathPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// MatchOverPayload closes a match
type MatchOverPayload struct {
	Score     float64 `json:"score"`
	Highscore float64 `json:"highscore"`
	Tutorial  bool    `json:"tutorial"`
	Ticks     uint64  `json:"ticks"`
}

// DifficultyPayload records a difficulty change
type DifficultyPayload struct {
	MinimumBulletTime float64 `json:"minimumBulletTime"`
}

// EncodePayload marshals a payload; nil and unencodable payloads are omitted.
func EncodePayload(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, matchID, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		MatchID:   matchID,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
