package config

import "hopskip/internal/game"

// GameLimits converts limits to the engine's resource caps.
func (l LimitsConfig) GameLimits() game.ResourceLimits {
	return game.ResourceLimits{
		MaxProjectiles: l.MaxProjectiles,
		MaxBursts:      l.MaxBursts,
		MaxEnemies:     l.MaxEnemies,
		MaxParticles:   l.MaxParticles,
	}
}

// Session builds the session setup shared by the server and local clients.
func (c AppConfig) Session() game.SessionConfig {
	s := game.DefaultSessionConfig()
	s.Match.BoundaryRadius = c.Sim.BoundaryRadius
	s.Match.MinimumBulletTime = c.Sim.MinimumBulletTime
	s.Match.Countdown = c.Sim.Countdown
	s.Match.Limits = c.Limits.GameLimits()
	s.EnemyCount = c.Sim.EnemyCount
	s.TutorialFirst = c.Sim.Tutorial
	return s
}

// Engine builds the engine setup for the server.
func (c AppConfig) Engine() game.EngineConfig {
	return game.EngineConfig{
		TickRate: c.Sim.TickRate,
		Session:  c.Session(),
		Seed:     c.Sim.Seed,
	}
}
