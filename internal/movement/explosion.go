package movement

import "github.com/Faultbox/strafe/pkg/math"

// Explosion describes one blast: origin, radius, knockback force and base damage.
type Explosion struct {
	Origin math.Vec3
	Radius float32
	Force  float32
	Damage float32
}

// ApplyExplosion pushes vel away from the blast with linear falloff and
// returns the falloff-scaled damage for the caller to apply. Outside the
// radius nothing changes and zero is returned.
//
// The push is clamped to ExplosionMaxKnockback. A grounded character gets at
// least ExplosionMinUplift of vertical velocity so ground friction does not
// eat the horizontal push on the next tick.
func ApplyExplosion(pos math.Vec3, vel *math.Vec3, grounded bool, e Explosion, t *Tuning) float32 {
	if e.Radius <= 0 {
		return 0
	}
	delta := pos.Sub(e.Origin)
	dist := delta.Length()
	falloff := 1 - dist/e.Radius
	if falloff <= 0 {
		return 0
	}

	dir := delta.Normalize()
	if dir.IsZero() {
		dir = math.Up
	}

	knockback := math.Mul(e.Force, falloff)
	if knockback > t.ExplosionMaxKnockback {
		knockback = t.ExplosionMaxKnockback
	}
	*vel = vel.AddScaled(dir, knockback)

	if grounded && vel.Y < t.ExplosionMinUplift {
		vel.Y = t.ExplosionMinUplift
	}
	return math.Mul(e.Damage, falloff)
}
