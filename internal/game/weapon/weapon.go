// Package weapon implements the draw/holster state machine and shot spread.
// Spread draws from the session PRNG so replays reproduce every shot.
package weapon

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/strafe/pkg/prng"
)

// State is the draw/holster state.
type State uint8

const (
	Holstered State = iota
	Drawing
	Ready
	Holstering
)

func (s State) String() string {
	switch s {
	case Holstered:
		return "holstered"
	case Drawing:
		return "drawing"
	case Ready:
		return "ready"
	case Holstering:
		return "holstering"
	default:
		return "unknown"
	}
}

// Spec is the static description of a weapon. Angles are radians.
type Spec struct {
	Name          string  `yaml:"name" json:"name"`
	DrawTime      float32 `yaml:"draw_time" json:"draw_time"`
	HolsterTime   float32 `yaml:"holster_time" json:"holster_time"`
	FireInterval  float32 `yaml:"fire_interval" json:"fire_interval"`
	BaseSpread    float32 `yaml:"base_spread" json:"base_spread"`
	MoveSpread    float32 `yaml:"move_spread" json:"move_spread"`
	MaxSpread     float32 `yaml:"max_spread" json:"max_spread"`
	SpreadSpeedAt float32 `yaml:"spread_speed_at" json:"spread_speed_at"` // speed at which MoveSpread is fully applied

	// Range is how far a shot travels before it is discarded.
	Range float32 `yaml:"range" json:"range"`
	// A shot that hits a surface explodes there. Zero BlastRadius disables it.
	BlastRadius float32 `yaml:"blast_radius" json:"blast_radius"`
	BlastForce  float32 `yaml:"blast_force" json:"blast_force"`
	BlastDamage float32 `yaml:"blast_damage" json:"blast_damage"`
}

// DefaultSpec returns the starting rocket launcher.
func DefaultSpec() Spec {
	return Spec{
		Name:          "rocket_launcher",
		DrawTime:      0.25,
		HolsterTime:   0.2,
		FireInterval:  0.8,
		BaseSpread:    0.004,
		MoveSpread:    0.03,
		MaxSpread:     0.05,
		SpreadSpeedAt: 320,
		Range:         4096,
		BlastRadius:   120,
		BlastForce:    700,
		BlastDamage:   40,
	}
}

// Explodes reports whether shots from this weapon detonate on impact.
func (s Spec) Explodes() bool { return s.BlastRadius > 0 }

// Shot is one fired round: the angular offsets from the aim direction.
type Shot struct {
	Yaw   float32
	Pitch float32
}

// Weapon is one character's weapon instance.
type Weapon struct {
	spec     Spec
	state    State
	timer    float32
	cooldown float32
}

// New returns a holstered weapon.
func New(spec Spec) *Weapon {
	return &Weapon{spec: spec}
}

// State returns the current state.
func (w *Weapon) State() State { return w.state }

// Timer returns the remaining draw or holster time.
func (w *Weapon) Timer() float32 { return w.timer }

// Cooldown returns the remaining time before the next shot.
func (w *Weapon) Cooldown() float32 { return w.cooldown }

// Spec returns the weapon description.
func (w *Weapon) Spec() Spec { return w.spec }

// Draw starts drawing. A weapon caught mid-holster draws back from where it is.
// Returns false if already drawing or ready.
func (w *Weapon) Draw() bool {
	switch w.state {
	case Holstered:
		w.state, w.timer = Drawing, w.spec.DrawTime
	case Holstering:
		w.state, w.timer = Drawing, w.spec.DrawTime*progress(w.timer, w.spec.HolsterTime)
	default:
		return false
	}
	return true
}

// Holster starts holstering. Returns false if already holstering or holstered.
func (w *Weapon) Holster() bool {
	switch w.state {
	case Ready:
		w.state, w.timer = Holstering, w.spec.HolsterTime
	case Drawing:
		w.state, w.timer = Holstering, w.spec.HolsterTime*progress(w.timer, w.spec.DrawTime)
	default:
		return false
	}
	return true
}

// progress returns how far a transition of length total got with remaining left, in [0,1].
func progress(remaining, total float32) float32 {
	if total <= 0 {
		return 0
	}
	return 1 - math32.Min(math32.Max(remaining/total, 0), 1)
}

// Update advances timers by dt.
func (w *Weapon) Update(dt float32) {
	if w.cooldown > 0 {
		w.cooldown = math32.Max(w.cooldown-dt, 0)
	}
	if w.state != Drawing && w.state != Holstering {
		return
	}
	w.timer -= dt
	if w.timer > 0 {
		return
	}
	w.timer = 0
	if w.state == Drawing {
		w.state = Ready
	} else {
		w.state = Holstered
	}
}

// CanFire reports whether a shot would be accepted now.
func (w *Weapon) CanFire() bool {
	return w.state == Ready && w.cooldown == 0
}

// SpreadCone returns the half-angle of the spread cone at a horizontal speed.
func (w *Weapon) SpreadCone(horizontalSpeed float32) float32 {
	moving := float32(1)
	if w.spec.SpreadSpeedAt > 0 {
		moving = math32.Min(horizontalSpeed/w.spec.SpreadSpeedAt, 1)
	}
	cone := w.spec.BaseSpread + w.spec.MoveSpread*moving
	return math32.Min(cone, w.spec.MaxSpread)
}

// Fire takes a shot if possible. Exactly two draws are taken from rng per
// accepted shot, yaw first, so shot order stays replayable.
func (w *Weapon) Fire(rng *prng.Rand, horizontalSpeed float32) (Shot, bool) {
	if !w.CanFire() {
		return Shot{}, false
	}
	cone := w.SpreadCone(horizontalSpeed)
	yaw := rng.Range(-cone, cone)
	pitch := rng.Range(-cone, cone)
	w.cooldown = w.spec.FireInterval
	return Shot{Yaw: yaw, Pitch: pitch}, true
}

// Restore rebuilds a weapon's dynamic state, for snapshots and tests.
func (w *Weapon) Restore(state State, timer, cooldown float32) {
	w.state, w.timer, w.cooldown = state, timer, cooldown
}
