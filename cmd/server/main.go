package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"hopskip/internal/api"
	"hopskip/internal/config"
	"hopskip/internal/game"
	"hopskip/internal/render"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  HOPSKIP - MATCH SERVER")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	simCfg := appConfig.Sim
	serverCfg := appConfig.Server

	engine := game.NewEngine(appConfig.Engine())
	limits := engine.GetLimits()
	log.Printf("🎮 Config: %d TPS, arena radius %.0f, %d enemies, min bullet time %.2f",
		simCfg.TickRate, simCfg.BoundaryRadius, simCfg.EnemyCount, simCfg.MinimumBulletTime)
	log.Printf("🛡️ Resource limits: %d projectiles, %d bursts, %d enemies, %d particles",
		limits.MaxProjectiles, limits.MaxBursts, limits.MaxEnemies, limits.MaxParticles)

	engine.SetTickObserver(api.RecordTick)
	engine.SetTeleportObserver(api.RecordTeleport)
	api.ObserveEventLog(engine.GetEventLogStats)

	// Start event log
	if serverCfg.EventLogPath != "" {
		if err := engine.StartEventLog(serverCfg.EventLogPath); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", serverCfg.EventLogPath)
		}
	}

	// Start debug server
	if appConfig.Observability.Enabled {
		if err := api.StartDebugServer(appConfig.Observability); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	renderer := render.New(render.Config{
		Width:  appConfig.Render.Width,
		Height: appConfig.Render.Height,
	})

	if serverCfg.AdminToken != "" {
		log.Println("🔐 Admin token required for match control")
	} else {
		log.Println("⚠️ Admin token not set - match control is open (set ADMIN_TOKEN to protect it)")
	}

	server := api.NewServer(engine, api.ServerConfig{
		Renderer:   render.NewFrameCache(renderer),
		AdminToken: serverCfg.AdminToken,
	})

	engine.Start()
	log.Println("✅ Game Engine started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + strconv.Itoa(serverCfg.Port)
	log.Printf("🔌 WebSocket: ws://localhost%s/ws", addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(addr); err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		log.Printf("❌ %v", err)
	}

	engine.Stop()
	engine.StopEventLog()
	log.Println("👋 Goodbye!")
}
