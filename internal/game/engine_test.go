package game

import (
	"bufio"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// TestNewEngine verifies engine creation publishes an initial snapshot
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		tickRate int
	}{
		{"standard 60 TPS", 60},
		{"low 30 TPS", 30},
		{"defaulted", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(EngineConfig{TickRate: tt.tickRate, Session: testSessionConfig(), Seed: 42})
			if engine == nil {
				t.Fatal("NewEngine returned nil")
			}
			snap := engine.GetSnapshot()
			if snap.MatchID == "" || snap.Phase != "playing" {
				t.Errorf("unexpected initial snapshot %s / %s", snap.MatchID, snap.Phase)
			}
			if !snap.Tutorial || len(snap.Enemies) != TutorialEnemies {
				t.Errorf("Expected tutorial layout, got %v / %d", snap.Tutorial, len(snap.Enemies))
			}
		})
	}
}

// TestEngineStartStop verifies engine can start and stop without panics
func TestEngineStartStop(t *testing.T) {
	engine := NewEngine(EngineConfig{TickRate: 60, Session: testSessionConfig()})

	var mu sync.Mutex
	ticks := 0
	engine.SetTickObserver(func(TickStats) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})

	engine.Start()
	if !engine.IsRunning() {
		t.Error("engine should be running")
	}
	time.Sleep(100 * time.Millisecond)
	engine.Stop()

	// Should not panic on double stop
	engine.Stop()

	mu.Lock()
	defer mu.Unlock()
	if ticks == 0 {
		t.Error("Expected at least one tick")
	}
}

// TestEngineStepClampsDelta verifies the measured-dt clamp
func TestEngineStepClampsDelta(t *testing.T) {
	engine := NewEngine(EngineConfig{TickRate: 60, Session: testSessionConfig(), Seed: 1})

	var got TickStats
	engine.SetTickObserver(func(s TickStats) { got = s })
	engine.Step(1.5)

	if got.Delta != MaxDeltaTime {
		t.Errorf("Delta = %f, want %f", got.Delta, MaxDeltaTime)
	}
	if got.Enemies != TutorialEnemies || got.Phase != PhasePlaying {
		t.Errorf("unexpected stats %+v", got)
	}
	if engine.GetSnapshot().TickNumber != 1 {
		t.Errorf("Expected tick 1, got %d", engine.GetSnapshot().TickNumber)
	}
}

// TestEngineTeleportOutcomes walks kill, miss and not-ready
func TestEngineTeleportOutcomes(t *testing.T) {
	engine := NewEngine(EngineConfig{TickRate: 60, Session: testSessionConfig(), Seed: 1})

	var outcomes []string
	engine.SetTeleportObserver(func(o string) { outcomes = append(outcomes, o) })

	res, err := engine.Teleport(0, "test")
	if err != nil || res.Kills != 1 {
		t.Fatalf("Expected a kill, got %+v %v", res, err)
	}
	if engine.GetSnapshot().Player.X != 150 {
		t.Error("snapshot should reflect the teleport")
	}
	if engine.Aim() != 0 {
		t.Error("teleport should store the aim")
	}

	cues := engine.DrainCues()
	if len(cues) != 2 || cues[0].Kind != CueTurn || cues[1].Kind != CueKill {
		t.Errorf("unexpected cues %+v", cues)
	}

	if _, err := engine.Teleport(math.Pi, "test"); err != nil {
		t.Fatalf("miss failed: %v", err)
	}
	if _, err := engine.Teleport(0, "test"); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady, got %v", err)
	}

	want := []string{OutcomeKill, OutcomeMiss, OutcomeNotReady}
	if len(outcomes) != len(want) {
		t.Fatalf("outcomes = %v, want %v", outcomes, want)
	}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Errorf("outcome %d = %s, want %s", i, outcomes[i], want[i])
		}
	}
}

// TestEngineControls covers difficulty, pause, resume, restart and reposition
func TestEngineControls(t *testing.T) {
	engine := NewEngine(EngineConfig{TickRate: 60, Session: testSessionConfig(), Seed: 1})

	if v := engine.SetDifficulty(3, ""); v != 1 {
		t.Errorf("difficulty clamped to %f, want 1", v)
	}
	if engine.GetSnapshot().Difficulty != 1 {
		t.Error("snapshot should carry the difficulty")
	}

	if !engine.Pause("") || engine.Phase() != PhasePaused {
		t.Fatal("pause failed")
	}
	if engine.Pause("") {
		t.Error("double pause should fail")
	}
	if !engine.Resume("") || engine.Phase() != PhasePlaying {
		t.Errorf("resume with no countdown should play, got %v", engine.Phase())
	}

	before := engine.GetSnapshot().Enemies[0]
	if n := engine.RepositionEnemies(); n != TutorialEnemies {
		t.Errorf("repositioned %d enemies, want %d", n, TutorialEnemies)
	}
	after := engine.GetSnapshot().Enemies[0]
	if d := math.Hypot(after.X-before.X, after.Y-before.Y); math.Abs(d-MoveSpeed) > 1e-9 {
		t.Errorf("enemy moved %f, want %f", d, MoveSpeed)
	}

	oldID := engine.GetSnapshot().MatchID
	newID := engine.Restart("")
	if newID == oldID || engine.GetSnapshot().MatchID != newID {
		t.Errorf("restart should publish a new match, old %s new %s", oldID, newID)
	}
	if engine.GetSnapshot().Difficulty != 1 {
		t.Error("difficulty should survive a restart")
	}
}

// TestEngineEventLog writes JSONL events to disk
func TestEngineEventLog(t *testing.T) {
	engine := NewEngine(EngineConfig{TickRate: 60, Session: testSessionConfig(), Seed: 1})
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := engine.StartEventLog(path); err != nil {
		t.Fatalf("StartEventLog failed: %v", err)
	}

	engine.Teleport(0, "test")
	engine.SetDifficulty(0.2, "test")
	engine.StopEventLog()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var types []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev struct {
			Type    string `json:"type"`
			MatchID string `json:"matchId"`
		}
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad JSONL line %q: %v", sc.Text(), err)
		}
		if ev.MatchID == "" {
			t.Error("event missing match ID")
		}
		types = append(types, ev.Type)
	}

	want := []string{"teleport", "kill", "difficulty"}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}

	stats := engine.GetEventLogStats()
	if stats.Total != 3 || stats.Running {
		t.Errorf("Expected 3 events from a stopped log, got %+v", stats)
	}
}

// TestEngineNonFiniteAim keeps NaN out of the stored aim and the event log
func TestEngineNonFiniteAim(t *testing.T) {
	engine := NewEngine(EngineConfig{TickRate: 60, Session: testSessionConfig(), Seed: 1})
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := engine.StartEventLog(path); err != nil {
		t.Fatalf("StartEventLog failed: %v", err)
	}

	engine.SetAim(math.Inf(-1))
	if got := engine.Aim(); got != 0 {
		t.Errorf("aim after SetAim(-Inf) = %f, want 0", got)
	}
	if _, err := engine.Teleport(math.NaN(), "test"); err != nil {
		t.Fatalf("Teleport(NaN) failed: %v", err)
	}
	if got := engine.Aim(); got != 0 {
		t.Errorf("aim after Teleport(NaN) = %f, want 0", got)
	}
	engine.StopEventLog()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	found := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev struct {
			Type    string          `json:"type"`
			Payload TeleportPayload `json:"payload"`
		}
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad JSONL line %q: %v", sc.Text(), err)
		}
		if ev.Type != "teleport" {
			continue
		}
		found = true
		if ev.Payload.Angle != 0 || ev.Payload.Outcome != OutcomeKill {
			t.Errorf("teleport payload = %+v, want angle 0 and a kill", ev.Payload)
		}
	}
	if !found {
		t.Error("teleport event with a payload was not logged")
	}
}
