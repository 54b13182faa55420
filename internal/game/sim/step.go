// Package sim is the tick driver: it samples contact, runs the movement core
// for each character in a fixed order and commits velocity to position.
package sim

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/strafe/internal/game/entity"
	"github.com/Faultbox/strafe/internal/game/weapon"
	"github.com/Faultbox/strafe/internal/game/world"
	"github.com/Faultbox/strafe/internal/movement"
	"github.com/Faultbox/strafe/pkg/math"
	"github.com/Faultbox/strafe/pkg/prng"
)

// Input is one character's input for one tick.
type Input struct {
	Forward  bool    `json:"f,omitempty" yaml:"forward"`
	Backward bool    `json:"b,omitempty" yaml:"backward"`
	Left     bool    `json:"l,omitempty" yaml:"left"`
	Right    bool    `json:"r,omitempty" yaml:"right"`
	Jump     bool    `json:"j,omitempty" yaml:"jump"`
	Crouch   bool    `json:"c,omitempty" yaml:"crouch"`
	Grapple  bool    `json:"g,omitempty" yaml:"grapple"`
	Fire     bool    `json:"x,omitempty" yaml:"fire"`
	Holster  bool    `json:"h,omitempty" yaml:"holster"`
	Yaw      float32 `json:"yaw" yaml:"yaw"`
	Pitch    float32 `json:"pitch,omitempty" yaml:"pitch"` // radians, positive looks up
	DT       float32 `json:"dt" yaml:"dt"`
}

// Collider is the collision engine contract. Contact is sampled before any
// movement runs; MoveAndSlide integrates the settled velocity. Raycast
// resolves where a shot lands.
type Collider interface {
	Contact(pos math.Vec3, yaw float32) world.Contact
	MoveAndSlide(pos, vel math.Vec3, dt float32) (math.Vec3, math.Vec3)
	Raycast(origin, dir math.Vec3, maxDist float32) (math.Vec3, bool)
}

// Env is everything a tick reads besides the character and its input.
type Env struct {
	Collider Collider
	Map      *world.Map
	Tuning   *movement.Tuning
	// RNG is the session PRNG. Weapon fire draws from it in tick order.
	RNG *prng.Rand
}

// StepResult reports what happened to a character during one tick.
type StepResult struct {
	DT       float32
	Grounded bool
	Landed   bool
	Surfing  bool
	Jumped   bool

	WallRun    movement.Transition
	WallJumped bool

	GrappleAttached bool
	GrappleReleased bool

	Entered  []world.Trigger
	Finished bool

	Shot *weapon.Shot
	// Explosion is set when the shot hit a surface. It is applied to every
	// character once all of them have stepped.
	Explosion *movement.Explosion
}

// Step advances one character by one tick.
//
// Order: clamp dt, sample contact, build the wish direction, run exactly one
// movement branch (surf, ground, or air with wall-run/grapple), apply entered
// trigger volumes, then integrate through the collider.
func Step(c *entity.Character, in Input, env *Env) StepResult {
	t := env.Tuning
	dt := t.ClampDelta(in.DT)
	res := StepResult{DT: dt}

	c.Yaw = in.Yaw
	jumpPressed := in.Jump && !c.JumpHeld
	c.JumpHeld = in.Jump
	if dt == 0 {
		res.Grounded = c.Grounded
		return res
	}

	contact := env.Collider.Contact(c.Position, c.Yaw)
	res.Surfing = contact.Touching && movement.IsSurfSurface(contact.Normal, t)
	res.Grounded = contact.Grounded && !res.Surfing
	res.Landed = res.Grounded && !c.Grounded
	c.Grounded = res.Grounded

	wish := movement.WishDir(in.Forward, in.Backward, in.Left, in.Right, c.Yaw)
	wishSpeed := t.GroundMaxSpeed
	if in.Crouch {
		wishSpeed = math.Mul(wishSpeed, t.CrouchSpeedMultiplier)
	}

	updateGrapple(c, in, env, &res)

	vel := c.Velocity
	switch {
	case res.Surfing:
		movement.ApplyAirAcceleration(&vel, wish, wishSpeed, dt, t)
		movement.ApplySurf(&vel, contact.Normal, dt, t)

	case res.Grounded:
		res.WallRun = c.WallRun.Update(&vel, movement.WallRunInput{Grounded: true}, dt, t)
		if vel.Y < 0 {
			vel.Y = 0
		}
		if in.Jump {
			// Holding jump hops on the landing tick without friction.
			movement.Jump(&vel, t)
			movement.ApplyAirAcceleration(&vel, wish, wishSpeed, dt, t)
			res.Jumped = true
			c.Grounded = false
		} else {
			if in.Crouch {
				movement.ApplySlideFriction(&vel, dt, t)
			} else {
				movement.ApplyFrictionDirectional(&vel, wish, dt, t)
			}
			movement.ApplyGroundAcceleration(&vel, wish, wishSpeed, dt, t)
		}

	case c.Grapple != nil:
		if !movement.ApplyGrapple(c.Position, &vel, *c.Grapple, dt, t) {
			movement.ApplyGravity(&vel, 1, dt, t)
		}
		movement.ApplyAirAcceleration(&vel, wish, wishSpeed, dt, t)

	default:
		res.WallRun = c.WallRun.Update(&vel, movement.WallRunInput{
			Left:        in.Left,
			Right:       in.Right,
			WallLeft:    contact.WallLeft,
			WallRight:   contact.WallRight,
			WallNormalX: contact.WallNormalX,
			WallNormalZ: contact.WallNormalZ,
		}, dt, t)
		running := c.WallRun.IsWallRunning()
		if running && jumpPressed {
			res.WallJumped = c.WallRun.WallJump(&vel, t)
		}
		if !running {
			movement.ApplyGravity(&vel, 1, dt, t)
		}
		movement.ApplyAirAcceleration(&vel, wish, wishSpeed, dt, t)
	}

	applyTriggers(c, &vel, env.Map, &res)
	c.Velocity = vel

	updateWeapon(c, in, env, dt, &res)

	c.Position, c.Velocity = env.Collider.MoveAndSlide(c.Position, c.Velocity, dt)
	return res
}

func updateGrapple(c *entity.Character, in Input, env *Env, res *StepResult) {
	if !in.Grapple {
		if c.Grapple != nil {
			c.ReleaseGrapple()
			res.GrappleReleased = true
		}
		return
	}
	if c.Grapple != nil || c.WallRun.IsWallRunning() || env.Map == nil {
		return
	}
	if gp, ok := env.Map.NearestGrapplePoint(c.Position, env.Tuning.GrappleMaxRange); ok {
		c.AttachGrapple(gp.Position)
		res.GrappleAttached = true
	}
}

// applyTriggers fires volumes on the tick the character enters them.
func applyTriggers(c *entity.Character, vel *math.Vec3, m *world.Map, res *StepResult) {
	if m == nil {
		return
	}
	for i := range m.Triggers {
		tr := &m.Triggers[i]
		inside := tr.Volume.Contains(c.Position)
		entered := inside && !c.Touching(tr.ID)
		c.SetTouching(tr.ID, inside)
		if !entered {
			continue
		}
		switch tr.Kind {
		case world.TriggerBoostPad:
			movement.ApplyBoostPad(vel, tr.Boost)
		case world.TriggerLaunchPad:
			movement.ApplyLaunchPad(vel, tr.Launch)
		case world.TriggerSpeedGate:
			if !movement.ApplySpeedGate(vel, tr.Gate) {
				continue
			}
		case world.TriggerFinish:
			if c.Finished {
				continue
			}
			c.Finished = true
			res.Finished = true
		}
		res.Entered = append(res.Entered, *tr)
	}
}

func updateWeapon(c *entity.Character, in Input, env *Env, dt float32, res *StepResult) {
	if c.Weapon == nil {
		return
	}
	if in.Holster {
		c.Weapon.Holster()
	} else {
		c.Weapon.Draw()
	}
	c.Weapon.Update(dt)
	if !in.Fire || env.RNG == nil {
		return
	}
	shot, ok := c.Weapon.Fire(env.RNG, c.HorizontalSpeed())
	if !ok {
		return
	}
	res.Shot = &shot

	spec := c.Weapon.Spec()
	if !spec.Explodes() {
		return
	}
	eye := c.Position.Add(math.Vec3{Y: entity.EyeHeight})
	dir := AimDir(c.Yaw+shot.Yaw, in.Pitch+shot.Pitch)
	if at, hit := env.Collider.Raycast(eye, dir, spec.Range); hit {
		res.Explosion = &movement.Explosion{
			Origin: at,
			Radius: spec.BlastRadius,
			Force:  spec.BlastForce,
			Damage: spec.BlastDamage,
		}
	}
}

// AimDir returns the unit view direction for a yaw and pitch.
func AimDir(yaw, pitch float32) math.Vec3 {
	cp := math32.Cos(pitch)
	return math.Vec3{Z: -cp, Y: math32.Sin(pitch)}.RotateY(yaw)
}
