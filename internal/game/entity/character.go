// Package entity holds the per-character simulation state.
package entity

import (
	"github.com/Faultbox/strafe/internal/game/weapon"
	"github.com/Faultbox/strafe/internal/movement"
	"github.com/Faultbox/strafe/pkg/math"
)

// MaxHealth is the health a character spawns with.
const MaxHealth = 100

// EyeHeight is the height of the view origin above Position, where shots
// start.
const EyeHeight = 56

// CenterHeight is the height of the body center above Position. Blasts push
// and damage relative to it.
const CenterHeight = 32

// Character is one simulated player. It owns every piece of mutable movement
// state for that player; nothing is shared between characters.
type Character struct {
	ID string

	Position math.Vec3
	Velocity math.Vec3
	Yaw      float32 // radians, 0 faces -Z

	Grounded bool
	JumpHeld bool // jump button state on the previous tick, for edge detection

	WallRun movement.WallRunState
	Grapple *movement.Grapple
	Weapon  *weapon.Weapon

	Health float32

	// Run progress
	Finished   bool
	FinishTick uint64

	// touching[i] is true while the character is inside trigger volume i.
	touching []bool
}

// NewCharacter creates a character at spawn with a holstered default weapon.
func NewCharacter(id string, spawn math.Vec3, yaw float32) *Character {
	return &Character{
		ID:       id,
		Position: spawn,
		Yaw:      yaw,
		Weapon:   weapon.New(weapon.DefaultSpec()),
		Health:   MaxHealth,
	}
}

// HorizontalSpeed returns the character's XZ speed.
func (c *Character) HorizontalSpeed() float32 {
	return movement.HorizontalSpeed(c.Velocity)
}

// AttachGrapple fires a rope to target with the current distance as its length.
func (c *Character) AttachGrapple(target math.Vec3) {
	c.Grapple = &movement.Grapple{Target: target, RopeLength: c.Position.Distance(target)}
}

// ReleaseGrapple drops the rope, if any.
func (c *Character) ReleaseGrapple() {
	c.Grapple = nil
}

// Touching reports whether the character was inside trigger id on the last tick.
func (c *Character) Touching(id int) bool {
	return id >= 0 && id < len(c.touching) && c.touching[id]
}

// TouchedTriggers returns the IDs of the trigger volumes the character is
// inside, in ascending order.
func (c *Character) TouchedTriggers() []int {
	var ids []int
	for id, in := range c.touching {
		if in {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetTouching records trigger overlap. The slice grows once per map.
func (c *Character) SetTouching(id int, inside bool) {
	if id < 0 {
		return
	}
	if id >= len(c.touching) {
		if !inside {
			return
		}
		grown := make([]bool, id+1)
		copy(grown, c.touching)
		c.touching = grown
	}
	c.touching[id] = inside
}

// TakeDamage applies damage and reports whether the character died.
func (c *Character) TakeDamage(amount float32) bool {
	if amount <= 0 || c.Health <= 0 {
		return false
	}
	c.Health -= amount
	if c.Health <= 0 {
		c.Health = 0
		return true
	}
	return false
}

// IsAlive returns whether the character has health left.
func (c *Character) IsAlive() bool {
	return c.Health > 0
}

// Respawn puts the character back at spawn with fresh movement state.
// Run progress is kept.
func (c *Character) Respawn(spawn math.Vec3, yaw float32) {
	c.Position = spawn
	c.Velocity = math.Vec3{}
	c.Yaw = yaw
	c.Grounded = false
	c.JumpHeld = false
	c.WallRun = movement.WallRunState{}
	c.Grapple = nil
	c.Health = MaxHealth
	for i := range c.touching {
		c.touching[i] = false
	}
}
