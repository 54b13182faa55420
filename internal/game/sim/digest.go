package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	gomath "math"

	"github.com/Faultbox/strafe/internal/game/entity"
	"github.com/Faultbox/strafe/pkg/math"
)

type digester struct {
	h   hash.Hash
	tmp [8]byte
}

func (d *digester) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.tmp[:], v)
	d.h.Write(d.tmp[:8])
}

func (d *digester) u32(v uint32) {
	binary.LittleEndian.PutUint32(d.tmp[:4], v)
	d.h.Write(d.tmp[:4])
}

func (d *digester) f32(v float32) { d.u32(gomath.Float32bits(v)) }

func (d *digester) vec(v math.Vec3) {
	d.f32(v.X)
	d.f32(v.Y)
	d.f32(v.Z)
}

func (d *digester) flag(b bool) {
	if b {
		d.h.Write([]byte{1})
	} else {
		d.h.Write([]byte{0})
	}
}

func (d *digester) str(s string) {
	d.u32(uint32(len(s)))
	d.h.Write([]byte(s))
}

// Digest returns a hex sha256 over the tick, the PRNG and the full
// simulation state of every character. Floats are hashed by bit pattern, so
// two digests match only when the runs are bit-identical.
func (s *Session) Digest() string {
	d := digester{h: sha256.New()}
	d.u64(s.tick)
	d.u32(s.seed)
	d.u32(s.rng.State())
	d.u32(uint32(len(s.chars)))
	for _, c := range s.chars {
		d.character(c)
	}
	return hex.EncodeToString(d.h.Sum(nil))
}

func (d *digester) character(c *entity.Character) {
	d.str(c.ID)
	d.vec(c.Position)
	d.vec(c.Velocity)
	d.f32(c.Yaw)
	d.flag(c.Grounded)
	d.flag(c.JumpHeld)

	wr := &c.WallRun
	d.u32(uint32(wr.Phase()))
	d.f32(wr.WallRunTime())
	d.vec(wr.WallNormal())
	d.vec(wr.LastWallNormal())

	d.flag(c.Grapple != nil)
	if c.Grapple != nil {
		d.vec(c.Grapple.Target)
		d.f32(c.Grapple.RopeLength)
	}

	d.flag(c.Weapon != nil)
	if c.Weapon != nil {
		d.u32(uint32(c.Weapon.State()))
		d.f32(c.Weapon.Timer())
		d.f32(c.Weapon.Cooldown())
	}

	d.f32(c.Health)
	d.flag(c.Finished)
	d.u64(c.FinishTick)

	touched := c.TouchedTriggers()
	d.u32(uint32(len(touched)))
	for _, id := range touched {
		d.u32(uint32(id))
	}
}
