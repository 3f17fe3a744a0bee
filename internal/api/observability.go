package api

import (
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"hopskip/internal/config"
	"hopskip/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "hopskip"

// Labels are closed sets; nothing here is keyed by client.
var (
	simTick = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "tick_duration_seconds",
		Help:      "Wall time of one simulation step.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})
	frameRender = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "frame_render_duration_seconds",
		Help:      "Wall time of one PNG frame render.",
		Buckets:   []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
	})

	liveEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "entities",
		Help:      "Entities alive in the current match.",
	}, []string{"kind"}) // projectile, enemy, burst
	liveProjectiles = liveEntities.WithLabelValues("projectile")
	liveEnemies     = liveEntities.WithLabelValues("enemy")
	liveBursts      = liveEntities.WithLabelValues("burst")

	teleports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "teleports_total",
		Help:      "Jumps by outcome.",
	}, []string{"outcome"}) // kill, miss, invalid, not_ready, over

	rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "connection_rejected_total",
		Help:      "Requests and sockets turned away.",
	}, []string{"reason"}) // rate_limit, origin, ws_total_limit, ws_ip_limit, unauthorized

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code.",
	}, []string{"method", "route", "code"})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "websocket_clients",
		Help:      "Open WebSocket connections.",
	})
	wsBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "websocket_broadcasts_total",
		Help:      "Events fanned out to WebSocket clients.",
	})
	wsCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "websocket_commands_total",
		Help:      "Client commands by type.",
	}, []string{"type"}) // aim, teleport, unknown, limited
)

// eventLogSource is read at scrape time by the event log collectors.
var eventLogSource atomic.Pointer[func() game.EventLogStats]

func init() {
	read := func(pick func(game.EventLogStats) float64) func() float64 {
		return func() float64 {
			if src := eventLogSource.Load(); src != nil {
				return pick((*src)())
			}
			return 0
		}
	}
	promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "event_log_events_total",
		Help:      "Events accepted by the event log.",
	}, read(func(s game.EventLogStats) float64 { return float64(s.Total) }))
	promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "event_log_dropped_total",
		Help:      "Events refused by a rate limit or a full queue.",
	}, read(func(s game.EventLogStats) float64 { return float64(s.Dropped) }))
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "event_log_pending",
		Help:      "Events queued but not yet written.",
	}, read(func(s game.EventLogStats) float64 { return float64(s.Pending) }))
}

// ObserveEventLog exposes the counters returned by stats, typically
// Engine.GetEventLogStats.
func ObserveEventLog(stats func() game.EventLogStats) {
	eventLogSource.Store(&stats)
}

// RecordTick is an Engine tick observer.
func RecordTick(stats game.TickStats) {
	simTick.Observe(stats.Duration.Seconds())
	liveProjectiles.Set(float64(stats.Projectiles))
	liveEnemies.Set(float64(stats.Enemies))
	liveBursts.Set(float64(stats.Bursts))
}

// RecordTeleport is an Engine teleport observer.
func RecordTeleport(outcome string) {
	teleports.WithLabelValues(outcome).Inc()
}

func RecordRender(d time.Duration) {
	frameRender.Observe(d.Seconds())
}

func RecordConnectionRejected(reason string) {
	rejections.WithLabelValues(reason).Inc()
}

func RecordRequest(method, route string, status int, d time.Duration) {
	httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func UpdateWSConnections(n int) {
	wsClients.Set(float64(n))
}

func IncrementWSMessages() {
	wsBroadcasts.Inc()
}

func recordWSCommand(kind string) {
	wsCommands.WithLabelValues(kind).Inc()
}

// metricsMiddleware times each request under its chi route pattern so
// path parameters never become label values.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, route, status, time.Since(start))
	})
}

// StartDebugServer serves DebugHandler in the background. Non-loopback
// addresses are replaced by 127.0.0.1:6060 unless ALLOW_DEBUG_EXTERNAL=true.
func StartDebugServer(cfg config.ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}
	if !isLoopback(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Printf("⚠️ Debug server address %s is not loopback, using 127.0.0.1:6060", cfg.ListenAddr)
		cfg.ListenAddr = "127.0.0.1:6060"
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           DebugHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("📊 Debug server on http://%s (metrics, pprof under /debug)", ln.Addr())
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ Debug server stopped: %v", err)
		}
	}()
	return nil
}

// DebugHandler routes /health, /metrics and the pprof tree under /debug.
func DebugHandler(cfg config.ObservabilityConfig) http.Handler {
	r := chi.NewRouter()
	if cfg.BasicAuthUser != "" {
		r.Use(middleware.BasicAuth("debug", map[string]string{cfg.BasicAuthUser: cfg.BasicAuthPass}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/debug", middleware.Profiler())
	return r
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
