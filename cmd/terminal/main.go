package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"hopskip/internal/audio"
	"hopskip/internal/config"
	"hopskip/internal/game"
	"hopskip/internal/play"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

const (
	frameInterval = 16 * time.Millisecond

	// World units covered by one terminal cell. Cells are about twice as
	// tall as they are wide.
	unitsPerCol = 25.0
	unitsPerRow = 50.0

	aimStep = math.Pi / 12
)

var (
	hudStyle      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	boundaryStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	shadowStyle   = tcell.StyleDefault.Foreground(tcell.ColorLightBlue)
	sparkStyle    = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	bulletStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	pendingStyle  = tcell.StyleDefault.Foreground(tcell.ColorOlive)
)

type Game struct {
	screen tcell.Screen
	local  *play.Local
	snap   *game.MatchSnapshot

	width, height int
	lastFrame     time.Time
}

func NewGame(local *play.Local) (*Game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()

	g := &Game{
		screen:    screen,
		local:     local,
		snap:      local.Engine().GetSnapshot(),
		lastFrame: time.Now(),
	}
	g.width, g.height = screen.Size()
	return g, nil
}

// toScreen maps a world position to a cell, with the player at the center.
func (g *Game) toScreen(x, y float64) (int, int) {
	cx := float64(g.width) / 2
	cy := float64(g.height) / 2
	sx := cx + (x-g.snap.Player.X+g.snap.Shake.OffsetX)/unitsPerCol
	sy := cy + (y-g.snap.Player.Y+g.snap.Shake.OffsetY)/unitsPerRow
	return int(math.Floor(sx)), int(math.Floor(sy))
}

func (g *Game) put(x, y int, r rune, style tcell.Style) {
	if x >= 0 && x < g.width && y >= 1 && y < g.height {
		g.screen.SetContent(x, y, r, nil, style)
	}
}

func (g *Game) text(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		if x+i >= 0 && x+i < g.width && y >= 0 && y < g.height {
			g.screen.SetContent(x+i, y, r, nil, style)
		}
	}
}

func (g *Game) draw() {
	g.screen.Clear()
	snap := g.snap

	// Boundary ring
	if r := snap.BoundaryRadius; r > 0 {
		steps := int(2 * math.Pi * r / unitsPerCol)
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps)
			x, y := g.toScreen(r*math.Cos(a), r*math.Sin(a))
			g.put(x, y, '·', boundaryStyle)
		}
	}

	for _, e := range snap.Enemies {
		x, y := g.toScreen(e.X, e.Y)
		mark := 'E'
		if e.Kind != "" {
			mark = []rune(strings.ToUpper(e.Kind))[0]
		}
		g.put(x, y, mark, tcell.StyleDefault.Foreground(tcell.GetColor(e.Color)).Bold(true))
	}

	for _, p := range snap.Projectiles {
		x, y := g.toScreen(p.X, p.Y)
		if p.Launched {
			g.put(x, y, '•', bulletStyle)
		} else {
			g.put(x, y, '∘', pendingStyle)
		}
	}

	for _, p := range snap.Particles {
		x, y := g.toScreen(p.X, p.Y)
		g.put(x, y, '*', sparkStyle)
	}

	p := snap.Player
	if p.BulletTime && snap.Phase == "playing" {
		x, y := g.toScreen(p.ShadowX, p.ShadowY)
		g.put(x, y, '□', shadowStyle)
	}
	if snap.Phase != "dying" && snap.Phase != "over" {
		x, y := g.toScreen(p.X, p.Y)
		g.put(x, y, '@', tcell.StyleDefault.Foreground(tcell.GetColor(p.Color)).Bold(true))
	}

	g.drawHUD()
	g.screen.Show()
}

func (g *Game) drawHUD() {
	snap := g.snap
	s := snap.Score
	g.text(0, 0, fmt.Sprintf("SCORE %.0f  NEXT +%.0f  CHAIN %d  BEST %.0f  | %s  min %.1fs",
		s.Score, s.ScoreAdd, s.KillChain, s.Highscore, snap.Mode, snap.Difficulty), hudStyle)

	var banner string
	switch snap.Phase {
	case "countdown":
		banner = fmt.Sprintf("%d", int(math.Ceil(snap.Countdown)))
	case "paused":
		banner = "PAUSED"
	case "over":
		banner = "GAME OVER - press r"
	}
	if banner != "" {
		g.text(g.width/2-len(banner)/2, g.height/3, banner, hudStyle.Bold(true))
	}

	help := "arrows/mouse aim  space/click jump  p pause  r restart  +/- difficulty  q quit"
	if snap.Tutorial {
		help = "TUTORIAL: aim at the enemies and jump through them  |  " + help
	}
	g.text(0, g.height-1, help, boundaryStyle)
}

func (g *Game) teleport() {
	if _, err := g.local.Teleport(); err != nil {
		log.Printf("⚠️ Teleport: %v", err)
	}
}

func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			g.local.Rotate(-aimStep)
		case tcell.KeyRight:
			g.local.Rotate(aimStep)
		case tcell.KeyEnter:
			g.teleport()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				g.teleport()
			case 'p':
				g.local.TogglePause()
			case 'r':
				g.local.Restart()
			case '+', '=':
				g.local.AdjustDifficulty(play.DifficultyStep)
			case '-':
				g.local.AdjustDifficulty(-play.DifficultyStep)
			}
		}

	case *tcell.EventMouse:
		mx, my := ev.Position()
		dx := (float64(mx) + 0.5 - float64(g.width)/2) * unitsPerCol
		dy := (float64(my) + 0.5 - float64(g.height)/2) * unitsPerRow
		g.local.AimAt(dx, dy)
		if ev.Buttons()&tcell.Button1 != 0 {
			g.teleport()
		}

	case *tcell.EventResize:
		g.width, g.height = g.screen.Size()
		g.screen.Sync()
	}

	return true
}

func (g *Game) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !g.handleInput(ev) {
				return
			}

		case <-ticker.C:
			now := time.Now()
			g.snap = g.local.Frame(now.Sub(g.lastFrame).Seconds())
			g.lastFrame = now
			g.draw()
		}
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		_ = godotenv.Load("../.env")
	}

	// The screen belongs to tcell; log lines go to a file or nowhere
	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	appConfig := config.Load()

	var sound play.CuePlayer
	if appConfig.Audio.Enabled {
		mixer := audio.NewMixer(appConfig.Audio)
		if err := audio.StartSpeaker(mixer); err != nil {
			// Non-fatal, the game runs without sound
			log.Printf("⚠️ Audio disabled: %v", err)
		} else {
			defer audio.CloseSpeaker()
			sound = mixer
		}
	}

	g, err := NewGame(play.New(appConfig.Engine(), sound))
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal init: %v\n", err)
		os.Exit(1)
	}
	defer g.screen.Fini()

	g.run()
}
