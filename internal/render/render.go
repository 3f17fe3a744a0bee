// Package render draws match snapshots into images with fogleman/gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"hopskip/internal/game"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Config sets the output frame size.
type Config struct {
	Width  int
	Height int
}

var (
	backgroundColor = color.RGBA{245, 245, 250, 255}
	gridColor       = color.RGBA{225, 225, 235, 255}
	boundaryColor   = color.RGBA{40, 40, 60, 255}
	shadowColor     = color.RGBA{0, 0, 255, 110}
	hudColor        = color.RGBA{20, 20, 30, 255}
	sparkColor      = color.RGBA{255, 140, 0, 255}
	deathSparkColor = color.RGBA{0, 0, 200, 255}
)

const gridSpacing = 100

// Renderer draws snapshots centered on the player. It is safe for
// concurrent use; every frame gets its own gg context.
type Renderer struct {
	width  int
	height int
}

// New creates a renderer for cfg, defaulting to 1280x720.
func New(cfg Config) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	return &Renderer{width: cfg.Width, height: cfg.Height}
}

// Size returns the frame dimensions.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// EncodePNG renders snap and writes it to w as PNG.
func (r *Renderer) EncodePNG(w io.Writer, snap *game.MatchSnapshot) error {
	if err := png.Encode(w, r.Render(snap)); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// Render draws snap into a new image.
func (r *Renderer) Render(snap *game.MatchSnapshot) image.Image {
	dc := gg.NewContext(r.width, r.height)
	w, h := float64(r.width), float64(r.height)

	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	// World space: the player sits at the frame center, offset by shake
	dc.Push()
	dc.Translate(w/2-snap.Player.X+snap.Shake.OffsetX, h/2-snap.Player.Y+snap.Shake.OffsetY)
	r.drawGrid(dc, snap)
	r.drawBoundary(dc, snap.BoundaryRadius)
	r.drawEnemies(dc, snap.Enemies)
	r.drawPlayer(dc, snap)
	r.drawProjectiles(dc, snap.Projectiles)
	r.drawParticles(dc, snap)
	dc.Pop()

	r.drawHUD(dc, snap)
	return dc.Image()
}

func (r *Renderer) drawGrid(dc *gg.Context, snap *game.MatchSnapshot) {
	w, h := float64(r.width), float64(r.height)
	left := math.Floor((snap.Player.X-w/2)/gridSpacing) * gridSpacing
	top := math.Floor((snap.Player.Y-h/2)/gridSpacing) * gridSpacing

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for x := left; x <= snap.Player.X+w/2+gridSpacing; x += gridSpacing {
		dc.DrawLine(x, top, x, top+h+2*gridSpacing)
		dc.Stroke()
	}
	for y := top; y <= snap.Player.Y+h/2+gridSpacing; y += gridSpacing {
		dc.DrawLine(left, y, left+w+2*gridSpacing, y)
		dc.Stroke()
	}
}

func (r *Renderer) drawBoundary(dc *gg.Context, radius float64) {
	if radius <= 0 {
		return
	}
	dc.SetColor(boundaryColor)
	dc.SetLineWidth(3)
	dc.DrawCircle(0, 0, radius)
	dc.Stroke()
}

func (r *Renderer) drawEnemies(dc *gg.Context, enemies []game.EnemySnapshot) {
	size := 2 * game.EntityRadius
	for _, e := range enemies {
		dc.SetColor(parseHexColor(e.Color))
		dc.DrawRectangle(e.X-game.EntityRadius, e.Y-game.EntityRadius, size, size)
		dc.Fill()

		// Charge arc shows how close the enemy is to firing
		if e.Charge > 0 {
			dc.SetColor(hudColor)
			dc.SetLineWidth(2)
			dc.DrawArc(e.X, e.Y, game.EntityRadius+6, -math.Pi/2, -math.Pi/2+2*math.Pi*math.Min(e.Charge, 1))
			dc.Stroke()
		}

		if e.Kind != "" {
			dc.SetColor(color.White)
			dc.SetFontFace(basicfont.Face7x13)
			dc.DrawStringAnchored(strings.ToUpper(e.Kind[:1]), e.X, e.Y, 0.5, 0.35)
		}
	}
}

func (r *Renderer) drawPlayer(dc *gg.Context, snap *game.MatchSnapshot) {
	p := snap.Player
	size := 2 * game.EntityRadius

	if p.BulletTime && snap.Phase == "playing" {
		dc.SetColor(shadowColor)
		dc.SetLineWidth(2)
		dc.SetDash(6, 4)
		dc.DrawLine(p.X, p.Y, p.ShadowX, p.ShadowY)
		dc.Stroke()
		dc.SetDash()
		dc.DrawRectangle(p.ShadowX-game.EntityRadius, p.ShadowY-game.EntityRadius, size, size)
		dc.Stroke()
	}

	if snap.Phase == "dying" || snap.Phase == "over" {
		return
	}
	dc.SetColor(parseHexColor(p.Color))
	dc.DrawRectangle(p.X-game.EntityRadius, p.Y-game.EntityRadius, size, size)
	dc.Fill()
}

func (r *Renderer) drawProjectiles(dc *gg.Context, projectiles []game.ProjectileSnapshot) {
	for _, p := range projectiles {
		c := parseHexColor(p.Color)
		if !p.Launched {
			c.A = 90
		}
		dc.SetColor(c)
		dc.DrawCircle(p.X, p.Y, game.ProjectileRadius)
		dc.Fill()
	}
}

func (r *Renderer) drawParticles(dc *gg.Context, snap *game.MatchSnapshot) {
	base := sparkColor
	if snap.Phase == "dying" || snap.Phase == "over" {
		base = deathSparkColor
	}
	for _, p := range snap.Particles {
		c := base
		c.A = uint8(255 * math.Min(1, math.Max(0, p.Life*2)))
		dc.SetColor(c)
		dc.DrawCircle(p.X, p.Y, 3)
		dc.Fill()
	}
}

func (r *Renderer) drawHUD(dc *gg.Context, snap *game.MatchSnapshot) {
	w, h := float64(r.width), float64(r.height)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(hudColor)

	s := snap.Score
	dc.DrawString(fmt.Sprintf("SCORE %.0f", s.Score), 16, 24)
	dc.DrawString(fmt.Sprintf("NEXT +%.0f  CHAIN %d", s.ScoreAdd, s.KillChain), 16, 42)
	dc.DrawString(fmt.Sprintf("BEST %.0f", s.Highscore), 16, 60)
	dc.DrawStringAnchored(fmt.Sprintf("%s  min %.2fs  banked %.2fs", snap.Mode, snap.Difficulty, snap.Banked), w-16, 24, 1, 0)
	if snap.Tutorial {
		dc.DrawStringAnchored("TUTORIAL: aim and jump through the enemies", w/2, h-24, 0.5, 0)
	}

	var banner string
	switch snap.Phase {
	case "countdown":
		banner = fmt.Sprintf("%d", int(math.Ceil(snap.Countdown)))
	case "paused":
		banner = "PAUSED"
	case "over":
		banner = "GAME OVER"
	}
	if banner != "" {
		dc.Push()
		dc.ScaleAbout(4, 4, w/2, h/3)
		dc.DrawStringAnchored(banner, w/2, h/3, 0.5, 0.5)
		dc.Pop()
	}
}

func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}

	var r, g, b uint8
	fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 255}
}
