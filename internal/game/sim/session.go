package sim

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/strafe/internal/game/entity"
	"github.com/Faultbox/strafe/internal/game/world"
	"github.com/Faultbox/strafe/internal/logger"
	"github.com/Faultbox/strafe/internal/movement"
	"github.com/Faultbox/strafe/pkg/math"
	"github.com/Faultbox/strafe/pkg/prng"
)

// Config holds session configuration.
type Config struct {
	Map    *world.Map
	Tuning movement.Tuning
	Seed   uint32

	// Collider defaults to a PlaneWorld over Map.
	Collider Collider
	// Logger defaults to the "sim" child of the global logger.
	Logger *zap.Logger
}

// Session owns every character of one run and advances them in lock-step.
// A session is not safe for concurrent use.
type Session struct {
	tick   uint64
	seed   uint32
	rng    *prng.Rand
	tuning movement.Tuning
	env    Env
	chars  []*entity.Character
	log    *zap.Logger
}

// NewSession creates a session at tick 0.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Map == nil {
		return nil, errors.New("session needs a map")
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}

	s := &Session{
		seed:   cfg.Seed,
		rng:    prng.New(cfg.Seed),
		tuning: cfg.Tuning,
		log:    cfg.Logger,
	}
	if s.log == nil {
		s.log = logger.Named("sim")
	}
	col := cfg.Collider
	if col == nil {
		col = world.NewPlaneWorld(cfg.Map)
	}
	s.env = Env{Collider: col, Map: cfg.Map, Tuning: &s.tuning, RNG: s.rng}

	s.log.Debug("session created",
		zap.String("map", cfg.Map.ID),
		zap.Uint32("seed", cfg.Seed),
		zap.Int("tick_rate", cfg.Tuning.TickRate),
	)
	return s, nil
}

// AddCharacter spawns a character at the map spawn point. Characters step in
// the order they were added.
func (s *Session) AddCharacter(id string) *entity.Character {
	m := s.env.Map
	c := entity.NewCharacter(id, m.Spawn, m.SpawnYaw)
	s.chars = append(s.chars, c)
	return c
}

// Character returns a character by ID.
func (s *Session) Character(id string) (*entity.Character, bool) {
	for _, c := range s.chars {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Characters returns all characters in step order.
func (s *Session) Characters() []*entity.Character {
	return s.chars
}

// Tick returns the number of completed ticks.
func (s *Session) Tick() uint64 { return s.tick }

// Seed returns the PRNG seed the session started with.
func (s *Session) Seed() uint32 { return s.seed }

// Tuning returns the session tuning.
func (s *Session) Tuning() movement.Tuning { return s.tuning }

// Map returns the session map.
func (s *Session) Map() *world.Map { return s.env.Map }

// StepOnce advances every character by one tick. inputs[i] drives the i-th
// character; a missing input is an idle tick of the fixed step length.
// Returns the completed tick number and the state digest after it.
func (s *Session) StepOnce(inputs []Input) (uint64, string) {
	s.tick++
	var blasts []movement.Explosion
	for i, c := range s.chars {
		in := Input{Yaw: c.Yaw, DT: s.tuning.TickDelta()}
		if i < len(inputs) {
			in = inputs[i]
		}
		res := Step(c, in, &s.env)
		s.observe(c, res)
		if res.Explosion != nil {
			blasts = append(blasts, *res.Explosion)
		}
	}
	for _, e := range blasts {
		s.Explode(e)
	}
	return s.tick, s.Digest()
}

func (s *Session) observe(c *entity.Character, res StepResult) {
	if res.Finished {
		c.FinishTick = s.tick
		s.log.Info("run finished",
			zap.String("character", c.ID),
			zap.Uint64("tick", s.tick),
			zap.Float32("speed", c.HorizontalSpeed()),
		)
	}
	if ce := s.log.Check(zap.DebugLevel, "wall-run transition"); ce != nil && res.WallRun.Changed() {
		ce.Write(
			zap.String("character", c.ID),
			zap.Uint64("tick", s.tick),
			zap.Stringer("from", res.WallRun.From),
			zap.Stringer("to", res.WallRun.To),
			zap.Stringer("result", res.WallRun.Result),
		)
	}
	for _, tr := range res.Entered {
		if ce := s.log.Check(zap.DebugLevel, "trigger entered"); ce != nil {
			ce.Write(
				zap.String("character", c.ID),
				zap.Uint64("tick", s.tick),
				zap.Stringer("kind", tr.Kind),
				zap.String("name", tr.Name),
			)
		}
	}
}

// Explode applies one blast to every character. Damage that kills respawns
// the character at the map spawn. StepOnce calls it for every shot that hit
// a surface, in character order.
func (s *Session) Explode(e movement.Explosion) {
	if ce := s.log.Check(zap.DebugLevel, "explosion"); ce != nil {
		ce.Write(
			zap.Uint64("tick", s.tick),
			zap.Float32("x", e.Origin.X),
			zap.Float32("y", e.Origin.Y),
			zap.Float32("z", e.Origin.Z),
		)
	}
	m := s.env.Map
	for _, c := range s.chars {
		center := c.Position.Add(math.Vec3{Y: entity.CenterHeight})
		dmg := movement.ApplyExplosion(center, &c.Velocity, c.Grounded, e, &s.tuning)
		if dmg <= 0 {
			continue
		}
		if c.TakeDamage(dmg) {
			s.log.Info("character killed", zap.String("character", c.ID), zap.Uint64("tick", s.tick))
			c.Respawn(m.Spawn, m.SpawnYaw)
		}
	}
}

// Finished reports whether the character reached the finish volume.
func (s *Session) Finished(id string) bool {
	c, ok := s.Character(id)
	return ok && c.Finished
}

// FinishTick returns the tick on which the character finished.
func (s *Session) FinishTick(id string) (uint64, bool) {
	c, ok := s.Character(id)
	if !ok || !c.Finished {
		return 0, false
	}
	return c.FinishTick, true
}
