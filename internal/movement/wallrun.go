package movement

import "github.com/Faultbox/strafe/pkg/math"

// WallRunPhase is the wall-run state of one character.
type WallRunPhase uint8

const (
	// PhaseGrounded: touching ground. Cooldown is always clear here.
	PhaseGrounded WallRunPhase = iota
	// PhaseAirborne: in the air, free to start a wall-run.
	PhaseAirborne
	// PhaseWallRunning: attached to a wall with reduced gravity.
	PhaseWallRunning
	// PhaseCooldown: in the air after a wall-run ended; cleared on ground contact.
	PhaseCooldown
)

func (p WallRunPhase) String() string {
	switch p {
	case PhaseGrounded:
		return "grounded"
	case PhaseAirborne:
		return "airborne"
	case PhaseWallRunning:
		return "wall_running"
	case PhaseCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// ActivationResult explains why a wall-run did or did not start.
type ActivationResult uint8

const (
	Activated ActivationResult = iota
	RejectAlreadyRunning
	RejectGrounded
	RejectNoWall
	RejectTooSlow
	RejectSameWall
	RejectCooldown
)

func (r ActivationResult) String() string {
	switch r {
	case Activated:
		return "activated"
	case RejectAlreadyRunning:
		return "already_running"
	case RejectGrounded:
		return "grounded"
	case RejectNoWall:
		return "no_wall"
	case RejectTooSlow:
		return "too_slow"
	case RejectSameWall:
		return "same_wall"
	case RejectCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// WallRunInput is the per-tick input the wall-run machine consumes: strafe
// keys plus the collision engine's wall report.
type WallRunInput struct {
	Grounded    bool
	Left, Right bool
	WallLeft    bool
	WallRight   bool
	WallNormalX float32
	WallNormalZ float32
}

func (in WallRunInput) strafingIntoWall() bool {
	return (in.Left && in.WallLeft) || (in.Right && in.WallRight)
}

func (in WallRunInput) normal() math.Vec3 {
	return math.Vec3{X: in.WallNormalX, Z: in.WallNormalZ}.Normalize()
}

// Transition records a phase change made by Update.
type Transition struct {
	From, To WallRunPhase
	Result   ActivationResult
}

// Changed reports whether the phase moved.
func (tr Transition) Changed() bool { return tr.From != tr.To }

// WallRunState is the wall-run state machine of one character. The zero
// value is a grounded character.
type WallRunState struct {
	phase      WallRunPhase
	time       float32
	normal     math.Vec3
	lastNormal math.Vec3
}

// Phase returns the current phase.
func (s *WallRunState) Phase() WallRunPhase { return s.phase }

// IsWallRunning reports whether the character is attached to a wall.
func (s *WallRunState) IsWallRunning() bool { return s.phase == PhaseWallRunning }

// Cooldown reports whether a wall-run ended during the current air interval.
func (s *WallRunState) Cooldown() bool { return s.phase == PhaseCooldown }

// WallRunTime returns the seconds spent on the current wall.
func (s *WallRunState) WallRunTime() float32 { return s.time }

// WallNormal returns the normal of the wall being run on.
func (s *WallRunState) WallNormal() math.Vec3 { return s.normal }

// LastWallNormal returns the normal of the wall the last run ended on.
func (s *WallRunState) LastWallNormal() math.Vec3 { return s.lastNormal }

// Restore rebuilds a state from its parts, for snapshots and tests.
func Restore(phase WallRunPhase, time float32, normal, lastNormal math.Vec3) WallRunState {
	return WallRunState{phase: phase, time: time, normal: normal, lastNormal: lastNormal}
}

// Land resets the machine on ground contact. This is the only way the
// cooldown and the run timer are cleared.
func (s *WallRunState) Land() {
	s.phase = PhaseGrounded
	s.time = 0
	s.normal = math.Vec3{}
}

// CanActivate checks the activation guards without changing state.
func (s *WallRunState) CanActivate(vel math.Vec3, in WallRunInput, t *Tuning) ActivationResult {
	switch {
	case s.phase == PhaseWallRunning:
		return RejectAlreadyRunning
	case in.Grounded:
		return RejectGrounded
	case !in.strafingIntoWall():
		return RejectNoWall
	case HorizontalSpeed(vel) < t.WallRunMinSpeed:
		return RejectTooSlow
	}
	if s.phase == PhaseCooldown {
		if s.sameWall(in.normal(), t) {
			return RejectSameWall
		}
		if !t.SameWallBlocksOnlyOnCooldown || s.time >= t.WallRunMaxTime {
			return RejectCooldown
		}
	}
	return Activated
}

func (s *WallRunState) sameWall(n math.Vec3, t *Tuning) bool {
	return n.Sub(s.lastNormal).Length() <= t.WallNormalTolerance
}

// Update advances the machine by one tick and applies wall-run gravity while
// running. The caller applies normal gravity when IsWallRunning is false
// after the call.
func (s *WallRunState) Update(vel *math.Vec3, in WallRunInput, dt float32, t *Tuning) Transition {
	tr := Transition{From: s.phase}

	if in.Grounded {
		s.Land()
		tr.To = s.phase
		tr.Result = RejectGrounded
		return tr
	}
	if s.phase == PhaseGrounded {
		s.phase = PhaseAirborne
	}

	if s.phase != PhaseWallRunning {
		tr.Result = s.CanActivate(*vel, in, t)
		if tr.Result != Activated {
			tr.To = s.phase
			return tr
		}
		s.activate(vel, in.normal(), t)
	} else if !in.strafingIntoWall() {
		s.end()
		tr.To = s.phase
		return tr
	}

	ApplyGravity(vel, t.WallRunGravityMultiplier, dt, t)
	s.time += dt
	if s.time > t.WallRunMaxTime {
		s.end()
	}
	tr.To = s.phase
	return tr
}

func (s *WallRunState) activate(vel *math.Vec3, n math.Vec3, t *Tuning) {
	vel.X *= t.WallRunSpeedPreservation
	vel.Z *= t.WallRunSpeedPreservation
	if vel.Y < 0 {
		vel.Y = 0
	}
	s.phase = PhaseWallRunning
	s.normal = n
}

// end leaves the wall. Every exit sets the cooldown so the same wall cannot be
// re-grabbed without touching ground.
func (s *WallRunState) end() {
	s.phase = PhaseCooldown
	s.lastNormal = s.normal
	s.normal = math.Vec3{}
}

// WallJump launches the character off the wall it is running on: the wall
// normal scaled by WallJumpForce is added and vertical velocity is set to
// WallJumpUpForce. Returns false when not wall-running.
func (s *WallRunState) WallJump(vel *math.Vec3, t *Tuning) bool {
	if s.phase != PhaseWallRunning {
		return false
	}
	vel.X += math.Mul(s.normal.X, t.WallJumpForce)
	vel.Z += math.Mul(s.normal.Z, t.WallJumpForce)
	vel.Y = t.WallJumpUpForce
	s.end()
	return true
}
