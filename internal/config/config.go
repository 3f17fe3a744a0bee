// Package config provides centralized configuration management.
// Every command loads its settings here; other packages receive typed
// values and never read the environment themselves.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds match and engine settings.
type SimConfig struct {
	TickRate          int     // Engine ticks per second
	BoundaryRadius    float64 // Arena radius around the origin
	EnemyCount        int     // Enemies in the default starting ring
	MinimumBulletTime float64 // Default difficulty, clamped to [0, 1]
	Countdown         float64 // Seconds before play starts; 0 skips it
	Tutorial          bool    // First match uses the tutorial layout
	Seed              int64   // 0 seeds from the clock
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:          60,
		BoundaryRadius:    1000,
		EnemyCount:        5,
		MinimumBulletTime: 0,
		Countdown:         5,
		Tutorial:          true,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if v := getEnvInt("TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}
	if v := getEnvFloat("BOUNDARY_RADIUS", 0); v > 0 {
		cfg.BoundaryRadius = v
	}
	if v := getEnvInt("ENEMY_COUNT", 0); v > 0 {
		cfg.EnemyCount = v
	}
	if v := getEnvFloat("MIN_BULLET_TIME", -1); v >= 0 {
		cfg.MinimumBulletTime = clamp01(v)
	}
	if v := getEnvFloat("COUNTDOWN", -1); v >= 0 {
		cfg.Countdown = v
	}
	if os.Getenv("TUTORIAL") == "false" {
		cfg.Tutorial = false
	}
	if v := getEnvInt64("SEED", 0); v != 0 {
		cfg.Seed = v
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// LimitsConfig caps live entities so a runaway match cannot exhaust memory.
type LimitsConfig struct {
	MaxProjectiles int // Live projectile cap
	MaxBursts      int // Live particle burst cap
	MaxEnemies     int // Roster cap
	MaxParticles   int // Per-snapshot particle limit
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		MaxProjectiles: 2000,
		MaxBursts:      64,
		MaxEnemies:     200,
		MaxParticles:   600,
	}
}

// LimitsFromEnv returns resource limits with environment overrides.
func LimitsFromEnv() LimitsConfig {
	cfg := DefaultLimits()

	if v := getEnvInt("MAX_PROJECTILES", 0); v > 0 {
		cfg.MaxProjectiles = v
	}
	if v := getEnvInt("MAX_BURSTS", 0); v > 0 {
		cfg.MaxBursts = v
	}
	if v := getEnvInt("MAX_ENEMIES", 0); v > 0 {
		cfg.MaxEnemies = v
	}
	if v := getEnvInt("MAX_PARTICLES", 0); v > 0 {
		cfg.MaxParticles = v
	}

	return cfg
}

// =============================================================================
// RENDER CONFIGURATION
// =============================================================================

// RenderConfig holds frame rendering settings.
type RenderConfig struct {
	Width  int // Frame width in pixels
	Height int // Frame height in pixels
}

// DefaultRender returns the default render configuration.
func DefaultRender() RenderConfig {
	return RenderConfig{
		Width:  1280,
		Height: 720,
	}
}

// RenderFromEnv returns render configuration with environment overrides.
func RenderFromEnv() RenderConfig {
	cfg := DefaultRender()

	if w := getEnvInt("FRAME_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("FRAME_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}

	return cfg
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds cue playback settings.
type AudioConfig struct {
	SampleRate int     // Audio sample rate in Hz
	Volume     float64 // Master volume (0.0 to 1.0)
	Voices     int     // Cues that may play at once
	Enabled    bool
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.3,
		Voices:     8,
		Enabled:    true,
	}
}

// AudioFromEnv returns audio configuration with environment overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("SOUND_VOLUME", -1); v >= 0 {
		cfg.Volume = clamp01(v)
	}
	if v := getEnvInt("SOUND_VOICES", 0); v > 0 {
		cfg.Voices = v
	}
	if os.Getenv("SOUND_ENABLED") == "false" {
		cfg.Enabled = false
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	AdminToken   string // Guards match control routes when set
	EventLogPath string // JSONL event log; empty keeps events in memory
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		EventLogPath: "events.jsonl",
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	if v, ok := os.LookupEnv("EVENT_LOG"); ok {
		cfg.EventLogPath = v
	}

	return cfg
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // Localhost only unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservability returns safe defaults.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// ObservabilityFromEnv returns observability configuration with environment overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := DefaultObservability()

	if os.Getenv("DEBUG_SERVER") == "false" {
		cfg.Enabled = false
	}
	if v := os.Getenv("DEBUG_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	cfg.BasicAuthUser = os.Getenv("DEBUG_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_PASS")

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim           SimConfig
	Limits        LimitsConfig
	Render        RenderConfig
	Audio         AudioConfig
	Server        ServerConfig
	Observability ObservabilityConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:           SimFromEnv(),
		Limits:        LimitsFromEnv(),
		Render:        RenderFromEnv(),
		Audio:         AudioFromEnv(),
		Server:        ServerFromEnv(),
		Observability: ObservabilityFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
