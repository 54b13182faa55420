// Package movement implements the per-tick movement model: wish direction,
// Quake-style friction and acceleration, wall-running, surfing, grapple swing,
// explosion knockback and map-trigger velocity modifiers.
//
// Every function is a synchronous transformation of the velocity it is given.
// Nothing here keeps state between calls; per-character state lives in
// WallRunState and in the caller's character struct.
package movement

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Tuning is the numeric model of the movement core. It is configuration, not
// state: load it once and share it read-only between characters.
type Tuning struct {
	TickRate     int     `yaml:"tick_rate" json:"tick_rate"`
	MaxDeltaTime float32 `yaml:"max_delta_time" json:"max_delta_time"` // seconds

	GroundMaxSpeed float32 `yaml:"ground_max_speed" json:"ground_max_speed"`
	AirSpeedCap    float32 `yaml:"air_speed_cap" json:"air_speed_cap"`
	MaxSpeed       float32 `yaml:"max_speed" json:"max_speed"`

	GroundAccelerate float32 `yaml:"ground_accelerate" json:"ground_accelerate"`
	AirAccelerate    float32 `yaml:"air_accelerate" json:"air_accelerate"`

	Friction                float32 `yaml:"friction" json:"friction"`
	SlideFriction           float32 `yaml:"slide_friction" json:"slide_friction"`
	StopSpeed               float32 `yaml:"stop_speed" json:"stop_speed"`
	FrictionDeadZone        float32 `yaml:"friction_dead_zone" json:"friction_dead_zone"`
	CounterStrafeDot        float32 `yaml:"counter_strafe_dot" json:"counter_strafe_dot"`
	CounterStrafeMultiplier float32 `yaml:"counter_strafe_multiplier" json:"counter_strafe_multiplier"`

	Gravity               float32 `yaml:"gravity" json:"gravity"`
	JumpForce             float32 `yaml:"jump_force" json:"jump_force"`
	CrouchSpeedMultiplier float32 `yaml:"crouch_speed_multiplier" json:"crouch_speed_multiplier"`

	WallRunMinSpeed          float32 `yaml:"wall_run_min_speed" json:"wall_run_min_speed"`
	WallRunMaxTime           float32 `yaml:"wall_run_max_time" json:"wall_run_max_time"`
	WallRunGravityMultiplier float32 `yaml:"wall_run_gravity_multiplier" json:"wall_run_gravity_multiplier"`
	WallRunSpeedPreservation float32 `yaml:"wall_run_speed_preservation" json:"wall_run_speed_preservation"`
	WallJumpForce            float32 `yaml:"wall_jump_force" json:"wall_jump_force"`
	WallJumpUpForce          float32 `yaml:"wall_jump_up_force" json:"wall_jump_up_force"`
	WallNormalTolerance      float32 `yaml:"wall_normal_tolerance" json:"wall_normal_tolerance"`

	// SameWallBlocksOnlyOnCooldown selects how the same-wall check combines with
	// the cooldown gate. When false (the default) any cooldown rejects
	// activation until ground contact. When true the cooldown only rejects the
	// wall the character last ran on, so wall-to-wall chains stay possible
	// while the shared air-interval timer has time left.
	SameWallBlocksOnlyOnCooldown bool `yaml:"same_wall_blocks_only_on_cooldown" json:"same_wall_blocks_only_on_cooldown"`

	SurfMinAngle float32 `yaml:"surf_min_angle" json:"surf_min_angle"` // degrees from world up
	SurfMaxAngle float32 `yaml:"surf_max_angle" json:"surf_max_angle"`

	GrapplePullForce         float32 `yaml:"grapple_pull_force" json:"grapple_pull_force"`
	GrappleGravityMultiplier float32 `yaml:"grapple_gravity_multiplier" json:"grapple_gravity_multiplier"`
	GrappleMaxRange          float32 `yaml:"grapple_max_range" json:"grapple_max_range"`
	GrappleMinDistance       float32 `yaml:"grapple_min_distance" json:"grapple_min_distance"`

	ExplosionMaxKnockback float32 `yaml:"explosion_max_knockback" json:"explosion_max_knockback"`
	ExplosionMinUplift    float32 `yaml:"explosion_min_uplift" json:"explosion_min_uplift"`
}

// DefaultTuning returns the reference 128 Hz tuning.
func DefaultTuning() Tuning {
	return Tuning{
		TickRate:     128,
		MaxDeltaTime: 0.05,

		GroundMaxSpeed: 320,
		AirSpeedCap:    30,
		MaxSpeed:       3500,

		GroundAccelerate: 10,
		AirAccelerate:    100,

		Friction:                6,
		SlideFriction:           1.5,
		StopSpeed:               100,
		FrictionDeadZone:        0.1,
		CounterStrafeDot:        -0.5,
		CounterStrafeMultiplier: 2.5,

		Gravity:               800,
		JumpForce:             270,
		CrouchSpeedMultiplier: 0.5,

		WallRunMinSpeed:              200,
		WallRunMaxTime:               1.5,
		WallRunGravityMultiplier:     0.25,
		WallRunSpeedPreservation:     0.95,
		WallJumpForce:                300,
		WallJumpUpForce:              280,
		WallNormalTolerance:          0.05,
		SameWallBlocksOnlyOnCooldown: false,

		SurfMinAngle: 30,
		SurfMaxAngle: 60,

		GrapplePullForce:         1200,
		GrappleGravityMultiplier: 0.5,
		GrappleMaxRange:          1500,
		GrappleMinDistance:       0.01,

		ExplosionMaxKnockback: 900,
		ExplosionMinUplift:    250,
	}
}

// TickDelta returns the fixed step length in seconds.
func (t *Tuning) TickDelta() float32 {
	return 1 / float32(t.TickRate)
}

// ClampDelta bounds dt to [0, MaxDeltaTime] so a stalled frame cannot teleport a character.
func (t *Tuning) ClampDelta(dt float32) float32 {
	if dt < 0 || math32.IsNaN(dt) {
		return 0
	}
	if dt > t.MaxDeltaTime {
		return t.MaxDeltaTime
	}
	return dt
}

// Validate reports tunings the model cannot run with.
func (t *Tuning) Validate() error {
	var errs []error
	if t.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", t.TickRate))
	}
	if t.MaxDeltaTime <= 0 {
		errs = append(errs, fmt.Errorf("max_delta_time must be positive, got %v", t.MaxDeltaTime))
	}
	if t.GroundMaxSpeed <= 0 || t.AirSpeedCap <= 0 {
		errs = append(errs, errors.New("ground_max_speed and air_speed_cap must be positive"))
	}
	if t.MaxSpeed < t.GroundMaxSpeed {
		errs = append(errs, fmt.Errorf("max_speed %v below ground_max_speed %v", t.MaxSpeed, t.GroundMaxSpeed))
	}
	if t.SlideFriction <= 0 || t.SlideFriction >= t.Friction {
		errs = append(errs, fmt.Errorf("slide_friction %v must be in (0, friction=%v)", t.SlideFriction, t.Friction))
	}
	if t.StopSpeed < 0 || t.FrictionDeadZone < 0 {
		errs = append(errs, errors.New("stop_speed and friction_dead_zone must not be negative"))
	}
	if t.CounterStrafeMultiplier < 1 {
		errs = append(errs, fmt.Errorf("counter_strafe_multiplier %v below 1", t.CounterStrafeMultiplier))
	}
	if t.SurfMinAngle < 0 || t.SurfMaxAngle > 90 || t.SurfMinAngle >= t.SurfMaxAngle {
		errs = append(errs, fmt.Errorf("surf angle band [%v, %v] invalid", t.SurfMinAngle, t.SurfMaxAngle))
	}
	if t.WallRunMaxTime <= 0 {
		errs = append(errs, errors.New("wall_run_max_time must be positive"))
	}
	if t.GrappleMinDistance <= 0 {
		errs = append(errs, errors.New("grapple_min_distance must be positive"))
	}
	return errors.Join(errs...)
}
