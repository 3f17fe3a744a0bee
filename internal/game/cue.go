package game

// CueKind names a feedback sound the match asks its client to play.
type CueKind uint8

const (
	CueTurn CueKind = iota
	CueKill
	CueHit
	CueCountdown
)

func (k CueKind) String() string {
	switch k {
	case CueTurn:
		return "turn"
	case CueKill:
		return "kill"
	case CueHit:
		return "hit"
	case CueCountdown:
		return "countdown"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k CueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Cue is a queued feedback event. Chain is the kill chain before the kill
// and selects one of MaxKillChain+1 escalating kill sounds.
type Cue struct {
	Kind  CueKind `json:"kind"`
	Chain int     `json:"chain,omitempty"`
}

// maxPendingCues bounds the queue when no client drains it.
const maxPendingCues = 64

type cueQueue struct {
	pending []Cue
}

func (q *cueQueue) push(c Cue) {
	if len(q.pending) >= maxPendingCues {
		copy(q.pending, q.pending[1:])
		q.pending = q.pending[:len(q.pending)-1]
	}
	q.pending = append(q.pending, c)
}

// drain returns the queued cues in order and empties the queue.
func (q *cueQueue) drain() []Cue {
	if len(q.pending) == 0 {
		return nil
	}
	out := make([]Cue, len(q.pending))
	copy(out, q.pending)
	q.pending = q.pending[:0]
	return out
}
