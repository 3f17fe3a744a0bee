package game

import "math/rand"

// SessionConfig configures a run of consecutive matches.
type SessionConfig struct {
	Match         MatchConfig
	EnemyCount    int  // Enemies in the default starting ring
	TutorialFirst bool // First match uses the tutorial layout
}

// DefaultSessionConfig returns the standard session setup.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Match:         DefaultMatchConfig(),
		EnemyCount:    DefaultEnemyCount,
		TutorialFirst: true,
	}
}

// Session strings matches together for the lifetime of a process. It keeps
// the highscore and the difficulty setting between matches.
type Session struct {
	cfg          SessionConfig
	rng          *rand.Rand
	match        *Match
	highscore    float64
	tutorialDone bool
	difficulty   float64
	matches      int
}

// NewSession creates a session and its first match.
func NewSession(cfg SessionConfig, rng *rand.Rand) *Session {
	if cfg.EnemyCount <= 0 {
		cfg.EnemyCount = DefaultEnemyCount
	}
	s := &Session{
		cfg:          cfg,
		rng:          rng,
		tutorialDone: !cfg.TutorialFirst,
		difficulty:   clamp01(cfg.Match.MinimumBulletTime),
	}
	s.startMatch()
	return s
}

func (s *Session) startMatch() {
	mc := s.cfg.Match
	mc.MinimumBulletTime = s.difficulty
	m := NewMatch(mc, s.rng)
	if s.tutorialDone {
		m.SpawnDefault(s.cfg.EnemyCount)
	} else {
		m.SpawnTutorial()
	}
	s.match = m
	s.matches++
}

// Match returns the current match.
func (s *Session) Match() *Match { return s.match }

// Tick advances the current match. It returns true on the tick the match
// ends, after the highscore has been settled.
func (s *Session) Tick(rawDt, aim float64) bool {
	if s.match.Phase() == PhaseOver {
		return false
	}
	s.match.Tick(rawDt, aim)
	if s.match.Phase() != PhaseOver {
		return false
	}
	s.finish()
	return true
}

func (s *Session) finish() {
	if s.match.Tutorial() {
		s.tutorialDone = true
		return
	}
	if score := s.match.ScoreState().Score; score > s.highscore {
		s.highscore = score
	}
}

// Restart abandons the current match, if still running, and starts the
// next one. Abandoned matches do not count toward the highscore.
func (s *Session) Restart() *Match {
	s.startMatch()
	return s.match
}

// SetDifficulty updates the current match and every later one.
func (s *Session) SetDifficulty(minimumBulletTime float64) float64 {
	s.difficulty = clamp01(minimumBulletTime)
	s.match.SetDifficulty(s.difficulty)
	return s.difficulty
}

// ScoreState reports the current match's score with the session highscore.
func (s *Session) ScoreState() ScoreState {
	st := s.match.ScoreState()
	st.Highscore = s.highscore
	return st
}

func (s *Session) Highscore() float64  { return s.highscore }
func (s *Session) Difficulty() float64 { return s.difficulty }
func (s *Session) MatchCount() int     { return s.matches }
