package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"hopskip/internal/config"
	"hopskip/internal/game"
	"hopskip/internal/game/spatial"
)

// fakeEngine records calls and returns canned results.
type fakeEngine struct {
	mu          sync.Mutex
	snap        game.MatchSnapshot
	score       game.ScoreState
	aim         float64
	teleportErr error
	teleports   []float64
	sources     []string
	difficulty  float64
	paused      bool
	restarts    int
	cues        []game.Cue
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		snap:  game.MatchSnapshot{MatchID: "match-1", Phase: "playing", Mode: "bullet_time"},
		score: game.ScoreState{Score: 250, ScoreAdd: 200, KillChain: 2, Highscore: 900},
	}
}

func (f *fakeEngine) GetSnapshot() *game.MatchSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snap
	return &snap
}

func (f *fakeEngine) ScoreState() game.ScoreState { return f.score }

func (f *fakeEngine) DrainCues() []game.Cue {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.cues
	f.cues = nil
	return out
}

func (f *fakeEngine) SetAim(angle float64) {
	f.mu.Lock()
	f.aim = angle
	f.mu.Unlock()
}

func (f *fakeEngine) Aim() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aim
}

func (f *fakeEngine) Teleport(angle float64, source string) (game.TurnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teleports = append(f.teleports, angle)
	f.sources = append(f.sources, source)
	if f.teleportErr != nil {
		return game.TurnResult{}, f.teleportErr
	}
	return game.TurnResult{Kills: 2, To: spatial.Vec2{X: 150}}, nil
}

func (f *fakeEngine) Teleports() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.teleports...)
}

func (f *fakeEngine) SetDifficulty(v float64, source string) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	f.difficulty = v
	return v
}

func (f *fakeEngine) Pause(source string) bool {
	if f.paused {
		return false
	}
	f.paused = true
	return true
}

func (f *fakeEngine) Resume(source string) bool {
	if !f.paused {
		return false
	}
	f.paused = false
	return true
}

func (f *fakeEngine) Restart(source string) string {
	f.restarts++
	return fmt.Sprintf("match-%d", f.restarts+1)
}

func (f *fakeEngine) RepositionEnemies() int { return 5 }

type fakeRenderer struct{}

func (fakeRenderer) EncodePNG(w io.Writer, snap *game.MatchSnapshot) error {
	_, err := w.Write([]byte("\x89PNG" + snap.MatchID))
	return err
}

func newTestRouter(engine EngineInterface, token string) http.Handler {
	return NewRouter(RouterConfig{
		Engine:         engine,
		Renderer:       fakeRenderer{},
		AdminToken:     token,
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetStateAndScore(t *testing.T) {
	engine := newFakeEngine()
	router := newTestRouter(engine, "")

	rec := do(t, router, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/state = %d", rec.Code)
	}
	var snap map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap["matchId"] != "match-1" || snap["mode"] != "bullet_time" {
		t.Errorf("unexpected snapshot %v", snap)
	}

	rec = do(t, router, http.MethodGet, "/api/score", "")
	var score game.ScoreState
	if err := json.Unmarshal(rec.Body.Bytes(), &score); err != nil {
		t.Fatal(err)
	}
	if score != engine.score {
		t.Errorf("score = %+v, want %+v", score, engine.score)
	}
}

func TestTeleportStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"kill", `{"angle":0.5}`, nil, http.StatusOK},
		{"out of bounds", `{"angle":0}`, game.ErrOutOfBounds, http.StatusUnprocessableEntity},
		{"not ready", `{"angle":0}`, game.ErrNotReady, http.StatusConflict},
		{"match over", `{"angle":0}`, game.ErrMatchOver, http.StatusConflict},
		{"unexpected", `{"angle":0}`, errors.New("boom"), http.StatusInternalServerError},
		{"missing angle", `{}`, nil, http.StatusBadRequest},
		{"bad json", `{"angle":`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeEngine()
			engine.teleportErr = tt.err
			rec := do(t, newTestRouter(engine, ""), http.MethodPost, "/api/teleport", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestTeleportResponse(t *testing.T) {
	engine := newFakeEngine()
	rec := do(t, newTestRouter(engine, ""), http.MethodPost, "/api/teleport", `{"angle":1.25}`,
		"X-Forwarded-For", "10.0.0.7")

	var resp struct {
		Kills int `json:"kills"`
		To    struct {
			X float64 `json:"x"`
		} `json:"to"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Kills != 2 || resp.To.X != 150 {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(engine.teleports) != 1 || engine.teleports[0] != 1.25 {
		t.Errorf("engine saw teleports %v", engine.teleports)
	}
	if engine.sources[0] != "http:10.0.0.7" {
		t.Errorf("source = %q", engine.sources[0])
	}
}

func TestAim(t *testing.T) {
	engine := newFakeEngine()
	rec := do(t, newTestRouter(engine, ""), http.MethodPost, "/api/aim", `{"angle":-2}`)
	if rec.Code != http.StatusOK || engine.Aim() != -2 {
		t.Errorf("aim status %d, engine aim %f", rec.Code, engine.Aim())
	}
}

func TestMatchControl(t *testing.T) {
	engine := newFakeEngine()
	router := newTestRouter(engine, "")

	steps := []struct {
		path   string
		body   string
		status int
	}{
		{"/api/match/pause", "", http.StatusOK},
		{"/api/match/pause", "", http.StatusConflict},
		{"/api/match/resume", "", http.StatusOK},
		{"/api/match/resume", "", http.StatusConflict},
		{"/api/difficulty", `{"minimumBulletTime":4}`, http.StatusOK},
		{"/api/difficulty", `{}`, http.StatusBadRequest},
		{"/api/enemies/reposition", "", http.StatusOK},
		{"/api/match/restart", "", http.StatusOK},
	}
	for _, s := range steps {
		if rec := do(t, router, http.MethodPost, s.path, s.body); rec.Code != s.status {
			t.Errorf("POST %s %s = %d, want %d", s.path, s.body, rec.Code, s.status)
		}
	}

	if engine.difficulty != 1 {
		t.Errorf("difficulty = %f, want clamped 1", engine.difficulty)
	}
	if engine.restarts != 1 {
		t.Errorf("restarts = %d", engine.restarts)
	}
}

func TestAdminToken(t *testing.T) {
	engine := newFakeEngine()
	router := newTestRouter(engine, "s3cret")

	tests := []struct {
		name    string
		headers []string
		status  int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", []string{AdminTokenHeader, "nope"}, http.StatusUnauthorized},
		{"header", []string{AdminTokenHeader, "s3cret"}, http.StatusOK},
		{"bearer", []string{"Authorization", "Bearer s3cret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/match/restart", "", tt.headers...)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}

	// Player input stays open
	if rec := do(t, router, http.MethodPost, "/api/aim", `{"angle":0}`); rec.Code != http.StatusOK {
		t.Errorf("aim should not need the token, got %d", rec.Code)
	}
}

func TestFrameEndpoint(t *testing.T) {
	engine := newFakeEngine()
	rec := do(t, newTestRouter(engine, ""), http.MethodGet, "/api/frame.png", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("frame status %d type %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasSuffix(rec.Body.Bytes(), []byte("match-1")) {
		t.Error("frame should render the latest snapshot")
	}

	noRender := NewRouter(RouterConfig{Engine: engine, DisableLogging: true})
	if rec := do(t, noRender, http.MethodGet, "/api/frame.png", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("frame without renderer = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
	})
	defer limiter.Stop()

	router := NewRouter(RouterConfig{Engine: newFakeEngine(), RateLimiter: limiter, DisableLogging: true})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(t, router, http.MethodGet, "/api/score", "", "X-Real-IP", "192.0.2.1").Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Other clients keep their own budget
	if code := do(t, router, http.MethodGet, "/api/score", "", "X-Real-IP", "192.0.2.2").Code; code != http.StatusOK {
		t.Errorf("second client got %d", code)
	}
	if allowed, rejected := limiter.Stats(); allowed != 3 || rejected != 1 {
		t.Errorf("allowed=%d rejected=%d, want 3 and 1", allowed, rejected)
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"https://localhost", true},
		{"http://[::1]:8080", true},
		{"http://localhost.evil.com", false},
		{"ftp://localhost", false},
		{"localhost:3000", false},
		{"https://example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAllowedOrigin(tt.origin); got != tt.want {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestDebugHandler(t *testing.T) {
	RecordTick(game.TickStats{Projectiles: 3, Enemies: 2})
	RecordTeleport("kill")

	h := DebugHandler(config.DefaultObservability())
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("/health = %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `hopskip_teleports_total{outcome="kill"}`) {
		t.Error("metrics should expose teleport outcomes")
	}
	if !strings.Contains(rec.Body.String(), `hopskip_entities{kind="projectile"} 3`) {
		t.Error("metrics should expose the projectile gauge")
	}
	if rec := do(t, h, http.MethodGet, "/debug/pprof/", ""); rec.Code != http.StatusOK {
		t.Errorf("/debug/pprof/ = %d", rec.Code)
	}
}

func TestDebugHandlerBasicAuth(t *testing.T) {
	cfg := config.DefaultObservability()
	cfg.BasicAuthUser, cfg.BasicAuthPass = "ops", "secret"
	h := DebugHandler(cfg)

	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /health = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.SetBasicAuth("ops", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authorized /health = %d", rec.Code)
	}
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:6060", true},
		{"localhost:6060", true},
		{"[::1]:6060", true},
		{"0.0.0.0:6060", false},
		{":6060", false},
		{"10.0.0.5:6060", false},
		{"127.0.0.1", false},
	}
	for _, tt := range tests {
		if got := isLoopback(tt.addr); got != tt.want {
			t.Errorf("isLoopback(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
