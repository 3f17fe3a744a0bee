package main

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math"
	"strings"
	"time"

	"hopskip/internal/audio"
	"hopskip/internal/config"
	"hopskip/internal/game"
	"hopskip/internal/play"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/joho/godotenv"
	"golang.org/x/image/font/basicfont"
)

var (
	backgroundColor = color.RGBA{245, 245, 250, 255}
	boundaryColor   = color.RGBA{40, 40, 60, 255}
	shadowColor     = color.RGBA{0, 0, 255, 110}
	hudColor        = color.RGBA{20, 20, 30, 255}
	sparkColor      = color.RGBA{255, 140, 0, 255}
	deathSparkColor = color.RGBA{0, 0, 200, 255}
)

var errQuit = errors.New("quit")

type App struct {
	local  *play.Local
	snap   *game.MatchSnapshot
	width  int
	height int

	lastUpdateTime time.Time
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return errQuit
	}

	cx, cy := ebiten.CursorPosition()
	a.local.AimAt(float64(cx)-float64(a.width)/2, float64(cy)-float64(a.height)/2)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if _, err := a.local.Teleport(); err != nil {
			log.Printf("⚠️ Teleport: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.local.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.local.Restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		a.local.AdjustDifficulty(play.DifficultyStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		a.local.AdjustDifficulty(-play.DifficultyStep)
	}

	now := time.Now()
	a.snap = a.local.Frame(now.Sub(a.lastUpdateTime).Seconds())
	a.lastUpdateTime = now
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	snap := a.snap
	p := snap.Player

	// World offset: the player sits at the screen center, shifted by shake
	ox := float32(float64(a.width)/2 - p.X + snap.Shake.OffsetX)
	oy := float32(float64(a.height)/2 - p.Y + snap.Shake.OffsetY)
	r := float32(game.EntityRadius)

	if snap.BoundaryRadius > 0 {
		vector.StrokeCircle(screen, ox, oy, float32(snap.BoundaryRadius), 3, boundaryColor, true)
	}

	for _, e := range snap.Enemies {
		x, y := ox+float32(e.X), oy+float32(e.Y)
		vector.DrawFilledRect(screen, x-r, y-r, 2*r, 2*r, hexColor(e.Color), false)
		if e.Charge > 0 {
			// Charge bar under the enemy shows how close it is to firing
			vector.DrawFilledRect(screen, x-r, y+r+4, 2*r*float32(math.Min(e.Charge, 1)), 3, hudColor, false)
		}
		if e.Kind != "" {
			text.Draw(screen, strings.ToUpper(e.Kind[:1]), basicfont.Face7x13, int(x)-3, int(y)+4, color.White)
		}
	}

	if p.BulletTime && snap.Phase == "playing" {
		sx, sy := ox+float32(p.ShadowX), oy+float32(p.ShadowY)
		vector.StrokeLine(screen, ox+float32(p.X), oy+float32(p.Y), sx, sy, 2, shadowColor, true)
		vector.StrokeRect(screen, sx-r, sy-r, 2*r, 2*r, 2, shadowColor, false)
	}
	if snap.Phase != "dying" && snap.Phase != "over" {
		vector.DrawFilledRect(screen, ox+float32(p.X)-r, oy+float32(p.Y)-r, 2*r, 2*r, hexColor(p.Color), false)
	}

	for _, b := range snap.Projectiles {
		c := hexColor(b.Color)
		if !b.Launched {
			c.A = 90
		}
		vector.DrawFilledCircle(screen, ox+float32(b.X), oy+float32(b.Y), float32(game.ProjectileRadius), c, true)
	}

	spark := sparkColor
	if snap.Phase == "dying" || snap.Phase == "over" {
		spark = deathSparkColor
	}
	for _, pt := range snap.Particles {
		c := spark
		c.A = uint8(255 * math.Min(1, math.Max(0, pt.Life*2)))
		vector.DrawFilledCircle(screen, ox+float32(pt.X), oy+float32(pt.Y), 3, c, false)
	}

	a.drawHUD(screen)
}

func (a *App) drawHUD(screen *ebiten.Image) {
	snap := a.snap
	s := snap.Score
	face := basicfont.Face7x13

	text.Draw(screen, fmt.Sprintf("SCORE %.0f", s.Score), face, 16, 24, hudColor)
	text.Draw(screen, fmt.Sprintf("NEXT +%.0f  CHAIN %d", s.ScoreAdd, s.KillChain), face, 16, 42, hudColor)
	text.Draw(screen, fmt.Sprintf("BEST %.0f", s.Highscore), face, 16, 60, hudColor)
	text.Draw(screen, fmt.Sprintf("%s  min %.1fs  banked %.2fs", snap.Mode, snap.Difficulty, snap.Banked), face, a.width-260, 24, hudColor)

	if snap.Tutorial {
		text.Draw(screen, "TUTORIAL: aim with the mouse, click to jump through the enemies", face, 16, a.height-24, hudColor)
	}

	var banner string
	switch snap.Phase {
	case "countdown":
		banner = fmt.Sprintf("%d", int(math.Ceil(snap.Countdown)))
	case "paused":
		banner = "PAUSED"
	case "over":
		banner = "GAME OVER - press R"
	}
	if banner != "" {
		text.Draw(screen, banner, face, a.width/2-len(banner)*7/2, a.height/3, hudColor)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

func hexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}
	var r, g, b uint8
	fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 255}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	}

	appConfig := config.Load()

	var sound play.CuePlayer
	if appConfig.Audio.Enabled {
		mixer := audio.NewMixer(appConfig.Audio)
		ctx := ebaudio.NewContext(appConfig.Audio.SampleRate)
		player, err := ctx.NewPlayer(mixer)
		if err != nil {
			log.Printf("⚠️ Audio disabled: %v", err)
		} else {
			player.SetBufferSize(100 * time.Millisecond)
			player.Play()
			sound = mixer
		}
	}

	local := play.New(appConfig.Engine(), sound)
	app := &App{
		local:          local,
		snap:           local.Engine().GetSnapshot(),
		width:          appConfig.Render.Width,
		height:         appConfig.Render.Height,
		lastUpdateTime: time.Now(),
	}

	ebiten.SetWindowSize(app.width, app.height)
	ebiten.SetWindowTitle("hopskip")
	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
}
