package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ADMIN_TOKEN", "SEED", "TICK_RATE", "COUNTDOWN", "TUTORIAL", "MAX_PROJECTILES"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Sim != DefaultSim() {
		t.Errorf("Sim = %+v, want defaults", cfg.Sim)
	}
	if cfg.Limits != DefaultLimits() {
		t.Errorf("Limits = %+v, want defaults", cfg.Limits)
	}
	if cfg.Server.Port != 3000 || cfg.Server.AdminToken != "" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
}

func TestSimFromEnv(t *testing.T) {
	t.Setenv("TICK_RATE", "120")
	t.Setenv("BOUNDARY_RADIUS", "500")
	t.Setenv("MIN_BULLET_TIME", "3")
	t.Setenv("COUNTDOWN", "0")
	t.Setenv("TUTORIAL", "false")
	t.Setenv("SEED", "99")
	t.Setenv("ENEMY_COUNT", "not-a-number")

	cfg := SimFromEnv()
	if cfg.TickRate != 120 || cfg.BoundaryRadius != 500 {
		t.Errorf("tick/boundary not overridden: %+v", cfg)
	}
	if cfg.MinimumBulletTime != 1 {
		t.Errorf("MinimumBulletTime = %f, want clamped 1", cfg.MinimumBulletTime)
	}
	if cfg.Countdown != 0 || cfg.Tutorial || cfg.Seed != 99 {
		t.Errorf("countdown/tutorial/seed not overridden: %+v", cfg)
	}
	if cfg.EnemyCount != DefaultSim().EnemyCount {
		t.Errorf("bad integer should fall back to default, got %d", cfg.EnemyCount)
	}
}

func TestEnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(AppConfig) bool
	}{
		{"port", "PORT", "8081", func(c AppConfig) bool { return c.Server.Port == 8081 }},
		{"admin token", "ADMIN_TOKEN", "s3cret", func(c AppConfig) bool { return c.Server.AdminToken == "s3cret" }},
		{"event log disabled", "EVENT_LOG", "", func(c AppConfig) bool { return c.Server.EventLogPath == "" }},
		{"frame width", "FRAME_WIDTH", "640", func(c AppConfig) bool { return c.Render.Width == 640 }},
		{"volume clamp", "SOUND_VOLUME", "1.5", func(c AppConfig) bool { return c.Audio.Volume == 1 }},
		{"sound off", "SOUND_ENABLED", "false", func(c AppConfig) bool { return !c.Audio.Enabled }},
		{"projectile cap", "MAX_PROJECTILES", "10", func(c AppConfig) bool { return c.Limits.MaxProjectiles == 10 }},
		{"debug off", "DEBUG_SERVER", "false", func(c AppConfig) bool { return !c.Observability.Enabled }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if !tt.check(Load()) {
				t.Errorf("%s=%q was not applied", tt.key, tt.value)
			}
		})
	}
}

func TestEngineMapping(t *testing.T) {
	cfg := AppConfig{Sim: DefaultSim(), Limits: DefaultLimits()}
	cfg.Sim.Countdown = 0
	cfg.Sim.Tutorial = false
	cfg.Sim.MinimumBulletTime = 0.4
	cfg.Sim.Seed = 7
	cfg.Limits.MaxEnemies = 12

	ec := cfg.Engine()
	if ec.TickRate != 60 || ec.Seed != 7 {
		t.Errorf("engine config %+v", ec)
	}
	s := ec.Session
	if s.TutorialFirst || s.EnemyCount != 5 {
		t.Errorf("session config %+v", s)
	}
	if s.Match.Countdown != 0 || s.Match.MinimumBulletTime != 0.4 || s.Match.BoundaryRadius != 1000 {
		t.Errorf("match config %+v", s.Match)
	}
	if s.Match.Limits.MaxEnemies != 12 || s.Match.Limits.MaxProjectiles != 2000 {
		t.Errorf("limits %+v", s.Match.Limits)
	}
	if s.Match.DeathCountdown <= 0 {
		t.Error("death countdown should keep its default")
	}
}
