package movement

import "github.com/Faultbox/strafe/pkg/math"

// Grapple is an active rope: an anchor supplied by the map or a projectile
// and the maximum rope length.
type Grapple struct {
	Target     math.Vec3
	RopeLength float32
}

// ApplyGrapple pulls vel towards the anchor, applies swing gravity and then
// enforces the rope as a rigid constraint: if the next-tick position would be
// beyond RopeLength, the velocity component pointing away from the anchor is
// removed and the tangential part kept. Returns false without touching vel
// when the character is on top of the anchor.
func ApplyGrapple(pos math.Vec3, vel *math.Vec3, g Grapple, dt float32, t *Tuning) bool {
	toTarget := g.Target.Sub(pos)
	dist := toTarget.Length()
	if dist < t.GrappleMinDistance {
		return false
	}
	dir := toTarget.Scale(1 / dist)

	*vel = vel.AddScaled(dir, math.Mul(t.GrapplePullForce, dt))
	ApplyGravity(vel, t.GrappleGravityMultiplier, dt, t)

	next := pos.AddScaled(*vel, dt)
	if g.Target.Distance(next) > g.RopeLength {
		if radial := vel.Dot(dir); radial < 0 {
			*vel = vel.Sub(dir.Scale(radial))
		}
	}
	return true
}
