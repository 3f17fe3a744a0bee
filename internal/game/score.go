package game

// Scoring constants
const (
	ScoreAddBase = 100.0 // Points for the first kill of a chain
	ScoreAddStep = 50.0  // Added to the per-kill value after every kill
	MaxKillChain = 4
)

// ScoreState is the read-only view of a match's scoring.
type ScoreState struct {
	Score     float64 `json:"score"`
	ScoreAdd  float64 `json:"scoreAdd"`
	KillChain int     `json:"killChain"`
	Highscore float64 `json:"highscore"`
}

// Scoreboard tracks score and kill chain for one match.
type Scoreboard struct {
	score     float64
	scoreAdd  float64
	killChain int
}

// NewScoreboard returns a zeroed scoreboard at the base kill value.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{scoreAdd: ScoreAddBase}
}

// RecordKills credits kills, each worth scoreAdd scaled by the difficulty.
// It calls onKill with the chain value before each increment.
func (s *Scoreboard) RecordKills(kills int, minimumBulletTime float64, onKill func(chain int)) {
	for i := 0; i < kills; i++ {
		if onKill != nil {
			onKill(s.killChain)
		}
		s.score += s.scoreAdd * (1 + minimumBulletTime)
		s.scoreAdd += ScoreAddStep
		if s.killChain < MaxKillChain {
			s.killChain++
		}
	}
}

// ResetChain drops the per-kill value and chain back to baseline.
func (s *Scoreboard) ResetChain() {
	s.scoreAdd = ScoreAddBase
	s.killChain = 0
}

func (s *Scoreboard) Score() float64 { return s.score }

func (s *Scoreboard) State() ScoreState {
	return ScoreState{
		Score:     s.score,
		ScoreAdd:  s.scoreAdd,
		KillChain: s.killChain,
	}
}
