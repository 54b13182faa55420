package movement

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/strafe/pkg/math"
)

const degToRad = math32.Pi / 180

// IsSurfSurface reports whether a contact normal is inside the surf band:
// its angle from world up lies within [SurfMinAngle, SurfMaxAngle].
func IsSurfSurface(normal math.Vec3, t *Tuning) bool {
	n := normal.Normalize()
	if n.IsZero() {
		return false
	}
	// Larger angle, smaller cosine.
	lo := math32.Cos(t.SurfMaxAngle * degToRad)
	hi := math32.Cos(t.SurfMinAngle * degToRad)
	return n.Y >= lo && n.Y <= hi
}

// ApplySurf slides vel along a surf ramp with the given contact normal. The
// tangential part of one tick of gravity is added, any remaining velocity into
// the surface is cancelled, and the result is clamped to MaxSpeed. No
// friction is applied.
func ApplySurf(vel *math.Vec3, normal math.Vec3, dt float32, t *Tuning) {
	n := normal.Normalize()
	if n.IsZero() {
		return
	}

	g := math.Vec3{Y: -math.Mul(t.Gravity, dt)}
	tangential := g.Sub(n.Scale(g.Dot(n)))
	*vel = vel.Add(tangential)

	if into := vel.Dot(n); into < 0 {
		*vel = vel.Sub(n.Scale(into))
	}
	*vel = vel.ClampLength(t.MaxSpeed)
}
