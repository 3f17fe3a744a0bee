package game

import "math"

// Time dilation constants
const (
	BulletTimeScale         = 100.0 // Raw dt is divided by this while in bullet time
	EnterBulletTimeDuration = 0.25  // Seconds of ramp before bullet time engages
	enterRampDivisor        = 10.0
)

// TimeMode is the state of the time-dilation machine.
type TimeMode uint8

const (
	ModeBulletTime TimeMode = iota
	ModeEnteringBulletTime
	ModeResolvingEnemyActions
	ModeRealTime
)

func (m TimeMode) String() string {
	switch m {
	case ModeBulletTime:
		return "bullet_time"
	case ModeEnteringBulletTime:
		return "entering_bullet_time"
	case ModeResolvingEnemyActions:
		return "resolving_enemy_actions"
	case ModeRealTime:
		return "real_time"
	default:
		return "unknown"
	}
}

// Unscaled reports whether the mode runs the world at raw speed.
func (m TimeMode) Unscaled() bool {
	return m == ModeRealTime || m == ModeResolvingEnemyActions
}

// Step is the per-actor timestep a frame produces.
type Step struct {
	World float64 // Projectiles
	Enemy float64 // Enemy attack timers and the roster spawn timer
}

// TimeController owns the bullet-time state machine for one match.
//
// Enemies only receive time while resolving: the bullet time the player
// banked is paid back at real speed, one frame at a time, and each frame
// consumes at most what is left so the total catch-up equals the bank.
type TimeController struct {
	mode  TimeMode
	spent float64 // Banked bullet time
	enter float64 // Ramp progress in [0, EnterBulletTimeDuration]
}

// NewTimeController starts in bullet time with nothing banked.
func NewTimeController() *TimeController {
	return &TimeController{mode: ModeBulletTime}
}

// Mode returns the active state.
func (c *TimeController) Mode() TimeMode { return c.mode }

// Spent returns the banked bullet time.
func (c *TimeController) Spent() float64 { return c.spent }

// EnterProgress returns the ramp progress.
func (c *TimeController) EnterProgress() float64 { return c.enter }

// Advance consumes one raw frame delta. entered is true on the frame the
// ramp completes and bullet time engages again.
func (c *TimeController) Advance(raw float64) (step Step, entered bool) {
	if raw <= 0 || math.IsNaN(raw) {
		return Step{}, false
	}

	switch c.mode {
	case ModeResolvingEnemyActions:
		dt := math.Min(raw, c.spent)
		c.spent -= dt
		if c.spent <= 0 {
			c.spent = 0
			c.mode = ModeEnteringBulletTime
			c.enter = 0
		}
		return Step{World: dt, Enemy: dt}, false

	case ModeEnteringBulletTime:
		c.spent += raw
		c.enter = math.Min(c.enter+raw, EnterBulletTimeDuration)
		factor := (1 - c.enter/EnterBulletTimeDuration) / enterRampDivisor
		if c.enter >= EnterBulletTimeDuration {
			c.enter = 0
			c.mode = ModeBulletTime
			return Step{World: raw * factor / BulletTimeScale}, true
		}
		return Step{World: raw * factor}, false

	case ModeBulletTime:
		c.spent += raw
		return Step{World: raw / BulletTimeScale}, false

	default:
		return Step{World: raw}, false
	}
}

// OnTurn applies a resolved teleport. A miss starts paying back the bank;
// a kill resets the bank to the difficulty floor and keeps bullet time.
func (c *TimeController) OnTurn(kills int, minimumBulletTime float64) {
	if kills == 0 {
		c.mode = ModeResolvingEnemyActions
		c.enter = 0
		return
	}
	c.spent = minimumBulletTime
	c.mode = ModeBulletTime
}

// EnterRealTime switches to unscaled time, used once the player is dead.
func (c *TimeController) EnterRealTime() {
	c.mode = ModeRealTime
}
