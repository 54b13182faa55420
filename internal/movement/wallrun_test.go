package movement

import (
	"testing"

	"github.com/Faultbox/strafe/pkg/math"
)

// rightWall is a wall on the character's right while facing -Z.
var rightWall = WallRunInput{Right: true, WallRight: true, WallNormalX: -1}

var leftWall = WallRunInput{Left: true, WallLeft: true, WallNormalX: 1}

func airborne(s *WallRunState) {
	s.Update(&math.Vec3{}, WallRunInput{}, tick, defaultTuning())
}

func TestWallRun_Activates(t *testing.T) {
	tn := defaultTuning()
	var s WallRunState
	vel := math.Vec3{Y: -50, Z: -300}

	tr := s.Update(&vel, rightWall, tick, tn)
	if tr.Result != Activated || !s.IsWallRunning() {
		t.Fatalf("expected activation, got %v phase=%v", tr.Result, s.Phase())
	}
	if tr.From != PhaseGrounded || tr.To != PhaseWallRunning {
		t.Errorf("transition = %v -> %v", tr.From, tr.To)
	}
	approxEqual(t, vel.Z, -300*tn.WallRunSpeedPreservation, 1e-3, "preserved speed")
	approxEqual(t, vel.Y, -tn.Gravity*tn.WallRunGravityMultiplier*tick, 1e-4, "reduced gravity")
	approxVec(t, s.WallNormal(), math.Vec3{X: -1}, 1e-6, "wall normal")
}

func TestWallRun_ActivationGuards(t *testing.T) {
	tn := defaultTuning()
	tests := []struct {
		name string
		vel  math.Vec3
		in   WallRunInput
		want ActivationResult
	}{
		{"grounded", math.Vec3{Z: -300}, WallRunInput{Grounded: true, Right: true, WallRight: true, WallNormalX: -1}, RejectGrounded},
		{"no wall", math.Vec3{Z: -300}, WallRunInput{Right: true, WallNormalX: -1}, RejectNoWall},
		{"strafing away", math.Vec3{Z: -300}, WallRunInput{Left: true, WallRight: true, WallNormalX: -1}, RejectNoWall},
		{"too slow", math.Vec3{Z: -150}, rightWall, RejectTooSlow},
		{"ok", math.Vec3{Z: -300}, rightWall, Activated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s WallRunState
			airborne(&s)
			if got := s.CanActivate(tt.vel, tt.in, tn); got != tt.want {
				t.Errorf("CanActivate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWallRun_GravityIsReducedWhileRunning(t *testing.T) {
	tn := defaultTuning()
	var s WallRunState
	running := math.Vec3{Z: -300}
	s.Update(&running, rightWall, tick, tn)
	for i := 0; i < 10; i++ {
		s.Update(&running, rightWall, tick, tn)
	}
	falling := math.Vec3{}
	for i := 0; i < 11; i++ {
		ApplyGravity(&falling, 1, tick, tn)
	}
	if running.Y <= falling.Y {
		t.Errorf("wall-run vertical speed %v should fall slower than free fall %v", running.Y, falling.Y)
	}
}

func TestWallRun_TimeoutEntersCooldown(t *testing.T) {
	tn := defaultTuning()
	var s WallRunState
	vel := math.Vec3{Z: -300}
	ticks := 0
	for s.Update(&vel, rightWall, tick, tn); s.IsWallRunning(); s.Update(&vel, rightWall, tick, tn) {
		ticks++
		if ticks > 1000 {
			t.Fatal("wall-run never timed out")
		}
	}
	if !s.Cooldown() {
		t.Fatalf("phase after timeout = %v, want cooldown", s.Phase())
	}
	if elapsed := float32(ticks+1) * tick; elapsed < tn.WallRunMaxTime {
		t.Errorf("timed out after %vs, before max %vs", elapsed, tn.WallRunMaxTime)
	}
}

func TestWallRun_ReleasingStrafeEnds(t *testing.T) {
	tn := defaultTuning()
	var s WallRunState
	vel := math.Vec3{Z: -300}
	s.Update(&vel, rightWall, tick, tn)
	tr := s.Update(&vel, WallRunInput{WallRight: true, WallNormalX: -1}, tick, tn)
	if s.IsWallRunning() || tr.To != PhaseCooldown {
		t.Errorf("phase = %v, want cooldown after releasing strafe", s.Phase())
	}
	approxVec(t, s.LastWallNormal(), math.Vec3{X: -1}, 1e-6, "last wall normal")
}

func TestWallJump(t *testing.T) {
	tn := defaultTuning()
	var s WallRunState
	vel := math.Vec3{Z: -300}
	if s.WallJump(&vel, tn) {
		t.Fatal("wall jump allowed while not wall-running")
	}
	s.Update(&vel, rightWall, tick, tn)
	before := vel
	if !s.WallJump(&vel, tn) {
		t.Fatal("wall jump rejected while wall-running")
	}
	approxEqual(t, vel.X, before.X-tn.WallJumpForce, 1e-3, "push away from wall")
	approxEqual(t, vel.Z, before.Z, 1e-6, "along-wall speed")
	approxEqual(t, vel.Y, tn.WallJumpUpForce, 0, "upward impulse")
	if !s.Cooldown() {
		t.Errorf("phase after wall jump = %v, want cooldown", s.Phase())
	}
}

func TestWallRun_SameWallRejectedOnCooldown(t *testing.T) {
	for _, sameWallOnly := range []bool{true, false} {
		tn := defaultTuning()
		tn.SameWallBlocksOnlyOnCooldown = sameWallOnly

		var s WallRunState
		vel := math.Vec3{Z: -300}
		s.Update(&vel, rightWall, tick, tn)
		s.WallJump(&vel, tn)

		// Fast, strafing into the very same wall: every other guard passes.
		vel = math.Vec3{Z: -400}
		in := WallRunInput{Right: true, WallRight: true, WallNormalX: -1, WallNormalZ: 0.01}
		if got := s.CanActivate(vel, in, tn); got != RejectSameWall {
			t.Errorf("sameWallOnly=%v: CanActivate = %v, want %v", sameWallOnly, got, RejectSameWall)
		}
		s.Update(&vel, in, tick, tn)
		if s.IsWallRunning() {
			t.Errorf("sameWallOnly=%v: re-activated on the same wall", sameWallOnly)
		}
	}
}

func TestWallRun_DifferentWallOnCooldown(t *testing.T) {
	tests := []struct {
		sameWallOnly bool
		want         ActivationResult
	}{
		{true, Activated},
		{false, RejectCooldown},
	}
	if defaultTuning().SameWallBlocksOnlyOnCooldown {
		t.Error("any cooldown should block activation by default")
	}
	for _, tt := range tests {
		tn := defaultTuning()
		tn.SameWallBlocksOnlyOnCooldown = tt.sameWallOnly
		var s WallRunState
		vel := math.Vec3{Z: -300}
		s.Update(&vel, rightWall, tick, tn)
		s.WallJump(&vel, tn)

		vel = math.Vec3{Z: -400}
		if got := s.CanActivate(vel, leftWall, tn); got != tt.want {
			t.Errorf("sameWallOnly=%v: CanActivate(other wall) = %v, want %v", tt.sameWallOnly, got, tt.want)
		}
	}
}

func TestWallRun_CooldownClearsOnlyOnGround(t *testing.T) {
	tn := defaultTuning()
	var s WallRunState
	vel := math.Vec3{Z: -300}
	s.Update(&vel, rightWall, tick, tn)
	s.WallJump(&vel, tn)

	for i := 0; i < 500; i++ {
		v := math.Vec3{Z: -400}
		s.Update(&v, WallRunInput{}, tick, tn)
		if !s.Cooldown() {
			t.Fatalf("tick %d: cooldown cleared while airborne (phase %v)", i, s.Phase())
		}
	}

	s.Update(&vel, WallRunInput{Grounded: true}, tick, tn)
	if s.Phase() != PhaseGrounded || s.Cooldown() || s.WallRunTime() != 0 {
		t.Fatalf("after landing phase=%v time=%v", s.Phase(), s.WallRunTime())
	}

	vel = math.Vec3{Z: -400}
	s.Update(&vel, rightWall, tick, tn)
	if !s.IsWallRunning() {
		t.Error("same wall should be available again after ground contact")
	}
}

func TestWallRun_GroundContactCancelsRun(t *testing.T) {
	tn := defaultTuning()
	var s WallRunState
	vel := math.Vec3{Z: -300}
	s.Update(&vel, rightWall, tick, tn)
	in := rightWall
	in.Grounded = true
	tr := s.Update(&vel, in, tick, tn)
	if tr.To != PhaseGrounded || s.IsWallRunning() {
		t.Errorf("phase = %v, want grounded", s.Phase())
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	s := Restore(PhaseWallRunning, 0.5, math.Vec3{X: 1}, math.Vec3{Z: 1})
	if !s.IsWallRunning() || s.WallRunTime() != 0.5 || s.WallNormal().X != 1 || s.LastWallNormal().Z != 1 {
		t.Errorf("Restore produced %+v", s)
	}
}

func TestWallRun_TimerSharedAcrossWalls(t *testing.T) {
	tn := defaultTuning()
	tn.SameWallBlocksOnlyOnCooldown = true

	var s WallRunState
	vel := math.Vec3{Z: -300}
	for s.Update(&vel, rightWall, tick, tn); s.IsWallRunning(); s.Update(&vel, rightWall, tick, tn) {
	}
	spent := s.WallRunTime()

	// Another wall in the same air interval: the timer is used up.
	vel = math.Vec3{Z: -400}
	if got := s.CanActivate(vel, leftWall, tn); got != RejectCooldown {
		t.Errorf("CanActivate(other wall) after timeout = %v, want %v", got, RejectCooldown)
	}
	s.Update(&vel, leftWall, tick, tn)
	if s.IsWallRunning() || s.WallRunTime() != spent {
		t.Fatalf("second wall ran after timeout: phase=%v time=%v", s.Phase(), s.WallRunTime())
	}

	s.Update(&vel, WallRunInput{Grounded: true}, tick, tn)
	vel = math.Vec3{Z: -400}
	s.Update(&vel, leftWall, tick, tn)
	if !s.IsWallRunning() || s.WallRunTime() != tick {
		t.Errorf("after landing phase=%v time=%v, want a fresh run", s.Phase(), s.WallRunTime())
	}
}

func TestWallRun_ChainKeepsTimer(t *testing.T) {
	tn := defaultTuning()
	tn.SameWallBlocksOnlyOnCooldown = true

	var s WallRunState
	vel := math.Vec3{Z: -300}
	for i := 0; i < 10; i++ {
		s.Update(&vel, rightWall, tick, tn)
	}
	s.WallJump(&vel, tn)
	spent := s.WallRunTime()

	vel = math.Vec3{Z: -400}
	s.Update(&vel, leftWall, tick, tn)
	if !s.IsWallRunning() {
		t.Fatalf("chain to other wall rejected: phase=%v", s.Phase())
	}
	if s.WallRunTime() != spent+tick {
		t.Errorf("timer = %v, want %v carried over", s.WallRunTime(), spent+tick)
	}
}
