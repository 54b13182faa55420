package movement

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/strafe/pkg/math"
)

// HorizontalSpeed returns the XZ speed of v.
func HorizontalSpeed(v math.Vec3) float32 {
	return v.HorizontalLength()
}

// ApplyFriction applies standing ground friction to the horizontal velocity.
func ApplyFriction(vel *math.Vec3, dt float32, t *Tuning) {
	applyFriction(vel, t.Friction, dt, t)
}

// ApplySlideFriction applies the lower crouch-slide friction.
func ApplySlideFriction(vel *math.Vec3, dt float32, t *Tuning) {
	applyFriction(vel, t.SlideFriction, dt, t)
}

// ApplyFrictionDirectional applies ground friction, multiplied by
// CounterStrafeMultiplier when wishDir points against the current horizontal
// velocity past CounterStrafeDot.
func ApplyFrictionDirectional(vel *math.Vec3, wishDir math.Vec3, dt float32, t *Tuning) {
	coef := t.Friction
	if !wishDir.IsZero() {
		moving := vel.Horizontal().Normalize()
		if !moving.IsZero() && moving.Dot(wishDir) < t.CounterStrafeDot {
			coef *= t.CounterStrafeMultiplier
		}
	}
	applyFriction(vel, coef, dt, t)
}

// applyFriction is the shared kernel. The order control -> drop -> clamp ->
// rescale is part of the replay contract; do not reorder.
func applyFriction(vel *math.Vec3, coef, dt float32, t *Tuning) {
	speed := vel.HorizontalLength()
	if speed < t.FrictionDeadZone {
		vel.X = 0
		vel.Z = 0
		return
	}

	control := speed
	if control < t.StopSpeed {
		control = t.StopSpeed
	}
	drop := math.Mul(math.Mul(control, coef), dt)

	newSpeed := speed - drop
	if newSpeed < 0 {
		newSpeed = 0
	}
	scale := newSpeed / speed
	vel.X *= scale
	vel.Z *= scale
}

// ApplyGroundAcceleration accelerates vel towards wishSpeed along wishDir.
// It never pushes the projected speed past wishSpeed and never decelerates.
func ApplyGroundAcceleration(vel *math.Vec3, wishDir math.Vec3, wishSpeed, dt float32, t *Tuning) {
	accelerate(vel, wishDir, wishSpeed, t.GroundAccelerate, dt)
}

// ApplyAirAcceleration is ground acceleration with wishSpeed capped at
// min(GroundMaxSpeed, AirSpeedCap). The cap applies to the projection onto
// wishDir only, so strafing perpendicular to the velocity gains speed every
// tick with no upper bound on total speed.
func ApplyAirAcceleration(vel *math.Vec3, wishDir math.Vec3, wishSpeed, dt float32, t *Tuning) {
	capped := math32.Min(wishSpeed, math32.Min(t.GroundMaxSpeed, t.AirSpeedCap))
	accelerate(vel, wishDir, capped, t.AirAccelerate, dt)
}

func accelerate(vel *math.Vec3, wishDir math.Vec3, wishSpeed, accel, dt float32) {
	current := vel.Dot(wishDir)
	addSpeed := wishSpeed - current
	if addSpeed <= 0 {
		return
	}
	accelSpeed := math.Mul(math.Mul(accel, wishSpeed), dt)
	if accelSpeed > addSpeed {
		accelSpeed = addSpeed
	}
	*vel = vel.AddScaled(wishDir, accelSpeed)
}

// Jump sets the vertical velocity to JumpForce. Horizontal velocity is left
// untouched so landing and jumping on the same tick keeps all momentum.
func Jump(vel *math.Vec3, t *Tuning) {
	vel.Y = t.JumpForce
}

// ApplyGravity integrates gravity scaled by multiplier over dt.
func ApplyGravity(vel *math.Vec3, multiplier, dt float32, t *Tuning) {
	vel.Y -= math.Mul(math.Mul(t.Gravity, multiplier), dt)
}
