package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"hopskip/internal/game"
)

// maxBodyBytes bounds request bodies; every payload is a single number.
const maxBodyBytes = 1 << 10

type angleRequest struct {
	Angle *float64 `json:"angle"`
}

type difficultyRequest struct {
	MinimumBulletTime *float64 `json:"minimumBulletTime"`
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	// Lock-free snapshot read; never blocks the tick loop
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetScore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.ScoreState())
}

func (h *routerHandlers) handleAim(w http.ResponseWriter, r *http.Request) {
	angle, ok := decodeAngle(w, r)
	if !ok {
		return
	}
	h.engine.SetAim(angle)
	writeJSON(w, map[string]float64{"angle": angle})
}

func (h *routerHandlers) handleTeleport(w http.ResponseWriter, r *http.Request) {
	angle, ok := decodeAngle(w, r)
	if !ok {
		return
	}

	res, err := h.engine.Teleport(angle, "http:"+GetClientIP(r))
	if err != nil {
		writeError(w, err.Error(), teleportStatus(err))
		return
	}

	writeJSON(w, map[string]interface{}{
		"kills": res.Kills,
		"from":  map[string]float64{"x": res.From.X, "y": res.From.Y},
		"to":    map[string]float64{"x": res.To.X, "y": res.To.Y},
	})
}

// teleportStatus maps teleport errors to HTTP status codes.
func teleportStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrOutOfBounds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrNotReady), errors.Is(err, game.ErrMatchOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *routerHandlers) handleDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if err := decodeBody(w, r, &req); err != nil || req.MinimumBulletTime == nil {
		writeError(w, "minimumBulletTime is required", http.StatusBadRequest)
		return
	}

	v := h.engine.SetDifficulty(*req.MinimumBulletTime, "http:"+GetClientIP(r))
	writeJSON(w, map[string]float64{"minimumBulletTime": v})
}

func (h *routerHandlers) handlePause(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Pause("http:" + GetClientIP(r)) {
		writeError(w, "match cannot be paused", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleResume(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Resume("http:" + GetClientIP(r)) {
		writeError(w, "match is not paused", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleRestart(w http.ResponseWriter, r *http.Request) {
	id := h.engine.Restart("http:" + GetClientIP(r))
	log.Printf("🔄 Match restarted via API (%s)", GetClientIP(r))
	writeJSON(w, map[string]string{"matchId": id})
}

func (h *routerHandlers) handleReposition(w http.ResponseWriter, r *http.Request) {
	n := h.engine.RepositionEnemies()
	writeJSON(w, map[string]int{"moved": n})
}

func (h *routerHandlers) handleFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "frame rendering disabled", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.EncodePNG(w, h.engine.GetSnapshot()); err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		return
	}
	RecordRender(time.Since(start))
}

// Helper functions (package-level for reuse)

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func decodeAngle(w http.ResponseWriter, r *http.Request) (float64, bool) {
	var req angleRequest
	if err := decodeBody(w, r, &req); err != nil || req.Angle == nil {
		writeError(w, "angle is required", http.StatusBadRequest)
		return 0, false
	}
	return *req.Angle, true
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
