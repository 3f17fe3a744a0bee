package api

import (
	"io"
	"net/http"

	"hopskip/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface is the part of *game.Engine the API drives.
type EngineInterface interface {
	GetSnapshot() *game.MatchSnapshot
	ScoreState() game.ScoreState
	// DrainCues hands pending cues to a single consumer
	DrainCues() []game.Cue

	SetAim(angle float64)
	Teleport(angle float64, source string) (game.TurnResult, error)
	SetDifficulty(minimumBulletTime float64, source string) float64
	Pause(source string) bool
	Resume(source string) bool
	Restart(source string) string
	RepositionEnemies() int
}

// FrameRenderer draws a snapshot as a PNG image.
type FrameRenderer interface {
	EncodePNG(w io.Writer, snap *game.MatchSnapshot) error
}

// RouterConfig wires the router to its engine and optional collaborators.
type RouterConfig struct {
	// Engine is the match engine (required)
	Engine EngineInterface

	// Renderer serves /api/frame.png. The route answers 503 when nil.
	Renderer FrameRenderer

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil. If both are nil,
	// DefaultRateLimitConfig applies.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins replaces the default local-origin check when set.
	CORSOrigins []string

	// AdminToken guards match control routes when non-empty.
	AdminToken string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler dependencies.
type routerHandlers struct {
	engine   EngineInterface
	renderer FrameRenderer
}

// NewRouter builds the chi router. It opens no listeners; the only
// goroutine it may start is the rate limiter's sweeper.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting before CORS so floods are rejected early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOpts := cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", AdminTokenHeader},
		MaxAge:         300,
	}
	if cfg.CORSOrigins != nil {
		corsOpts.AllowedOrigins = cfg.CORSOrigins
	} else {
		corsOpts.AllowOriginFunc = func(_ *http.Request, origin string) bool {
			return IsAllowedOrigin(origin)
		}
	}
	r.Use(cors.Handler(corsOpts))

	h := &routerHandlers{
		engine:   cfg.Engine,
		renderer: cfg.Renderer,
	}
	guard := NewAdminGuard(cfg.AdminToken)

	r.Route("/api", func(r chi.Router) {
		// Match state
		r.Get("/state", h.handleGetState)
		r.Get("/score", h.handleGetScore)
		r.Get("/frame.png", h.handleFrame)

		// Player input
		r.Post("/aim", h.handleAim)
		r.Post("/teleport", h.handleTeleport)

		// Match control
		r.Group(func(r chi.Router) {
			r.Use(guard.Middleware)
			r.Post("/difficulty", h.handleDifficulty)
			r.Post("/match/pause", h.handlePause)
			r.Post("/match/resume", h.handleResume)
			r.Post("/match/restart", h.handleRestart)
			r.Post("/enemies/reposition", h.handleReposition)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}
