package movement

import "github.com/Faultbox/strafe/pkg/math"

// BoostPad adds Direction*Speed to the current velocity.
type BoostPad struct {
	Direction math.Vec3
	Speed     float32
}

// LaunchPad replaces the current velocity with Direction*Speed.
type LaunchPad struct {
	Direction math.Vec3
	Speed     float32
}

// SpeedGate multiplies horizontal velocity when the character is already fast enough.
type SpeedGate struct {
	Multiplier float32
	MinSpeed   float32
}

// GrapplePoint is a map-authored grapple anchor.
type GrapplePoint struct {
	Position math.Vec3
}

// ApplyBoostPad is additive: momentum is kept.
func ApplyBoostPad(vel *math.Vec3, p BoostPad) {
	*vel = vel.AddScaled(p.Direction, p.Speed)
}

// ApplyLaunchPad overrides momentum for a deterministic launch arc.
func ApplyLaunchPad(vel *math.Vec3, p LaunchPad) {
	*vel = p.Direction.Scale(p.Speed)
}

// ApplySpeedGate multiplies the horizontal components by the gate multiplier
// when horizontal speed is at least MinSpeed. It reports whether it fired.
func ApplySpeedGate(vel *math.Vec3, g SpeedGate) bool {
	if HorizontalSpeed(*vel) < g.MinSpeed {
		return false
	}
	vel.X *= g.Multiplier
	vel.Z *= g.Multiplier
	return true
}
