package replay

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/strafe/internal/game/entity"
	"github.com/Faultbox/strafe/internal/game/sim"
	"github.com/Faultbox/strafe/internal/game/world"
	"github.com/Faultbox/strafe/internal/logger"
	"github.com/Faultbox/strafe/internal/movement"
)

var (
	// ErrDigestMismatch means re-simulation produced a different state.
	ErrDigestMismatch = errors.New("replay digest mismatch")
	// ErrTickMismatch means frames are missing, duplicated or out of order.
	ErrTickMismatch = errors.New("replay tick mismatch")
	// ErrMapMismatch means the recording was made on a different map.
	ErrMapMismatch = errors.New("replay map mismatch")
	// ErrStepMismatch means a frame did not advance by exactly one fixed tick.
	ErrStepMismatch = errors.New("replay step length mismatch")
	// ErrTuningMismatch means the recording was made with other movement tuning.
	ErrTuningMismatch = errors.New("replay tuning mismatch")
)

// CheckTuning reports whether the run was recorded with the tuning a
// leaderboard accepts. The tick rate is part of the tuning, so a match also
// fixes the length of a tick.
func (h Header) CheckTuning(want movement.Tuning) error {
	if h.Tuning != want {
		return fmt.Errorf("%w: recorded at %d Hz with %+v", ErrTuningMismatch, h.Tuning.TickRate, h.Tuning)
	}
	return nil
}

// MismatchError reports the first tick whose digest did not match.
type MismatchError struct {
	Tick      uint64
	Got, Want string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("digest mismatch at tick %d: got=%s want=%s", e.Tick, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error { return ErrDigestMismatch }

// Result summarises a verified run.
type Result struct {
	Ticks       int
	Finished    bool
	FinishTick  uint64
	FinalDigest string
}

// Time returns the run time implied by the finish tick at tickRate.
func (r Result) Time(tickRate int) time.Duration {
	if tickRate <= 0 {
		return 0
	}
	return time.Duration(r.FinishTick) * (time.Second / time.Duration(tickRate))
}

// Recorder simulates one player tick by tick and keeps the frames, for callers
// that produce input live instead of from a script.
type Recorder struct {
	session *sim.Session
	rec     *Recording
}

// NewRecorder starts a recording session on m.
func NewRecorder(m *world.Map, t movement.Tuning, seed uint32, player string) (*Recorder, error) {
	s, err := sim.NewSession(sim.Config{Map: m, Tuning: t, Seed: seed})
	if err != nil {
		return nil, err
	}
	s.AddCharacter(player)
	return &Recorder{
		session: s,
		rec: &Recording{Header: Header{
			Version:    FormatVersion,
			MapID:      m.ID,
			MapDigest:  m.Digest,
			Player:     player,
			Seed:       seed,
			Tuning:     t,
			RecordedAt: time.Now().UTC(),
		}},
	}, nil
}

// Step runs one tick with in and returns the recorded frame.
func (r *Recorder) Step(in sim.Input) Frame {
	tick, digest := r.session.StepOnce([]sim.Input{in})
	fr := Frame{Tick: tick, Input: in, Digest: digest}
	r.rec.Frames = append(r.rec.Frames, fr)
	return fr
}

// Character returns the recorded player's character.
func (r *Recorder) Character() *entity.Character {
	return r.session.Characters()[0]
}

// Finished reports whether the player has reached the finish.
func (r *Recorder) Finished() bool {
	return r.Character().Finished
}

// Recording completes the header and returns the recording so far.
func (r *Recorder) Recording() *Recording {
	h := &r.rec.Header
	h.Ticks = len(r.rec.Frames)
	h.FinishTick, h.Finished = r.session.FinishTick(h.Player)
	return r.rec
}

// Record simulates inputs for one player on m and returns the recording.
func Record(ctx context.Context, m *world.Map, t movement.Tuning, seed uint32, player string, inputs []sim.Input) (*Recording, error) {
	r, err := NewRecorder(m, t, seed, player)
	if err != nil {
		return nil, err
	}
	r.rec.Frames = make([]Frame, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.Step(in)
	}
	rec := r.Recording()

	logger.Named("replay").Info("run recorded",
		zap.String("map", m.ID),
		zap.String("player", player),
		zap.Int("ticks", len(inputs)),
		zap.Bool("finished", rec.Header.Finished),
	)
	return rec, nil
}

// Verify re-simulates rec on m and checks every frame digest. The map must be
// the exact document the run was recorded on, and every frame must advance by
// exactly one fixed tick of the recorded tuning. Verify does not judge the
// tuning itself; leaderboards call Header.CheckTuning for that.
func Verify(ctx context.Context, rec *Recording, m *world.Map) (Result, error) {
	h := rec.Header
	log := logger.Named("replay").With(zap.String("map", h.MapID), zap.String("player", h.Player))

	if h.Version != FormatVersion {
		return Result{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.MapID != m.ID || h.MapDigest != m.Digest {
		return Result{}, fmt.Errorf("%w: recorded on %s (%s), got %s (%s)", ErrMapMismatch, h.MapID, h.MapDigest, m.ID, m.Digest)
	}
	if len(rec.Frames) != h.Ticks {
		return Result{}, fmt.Errorf("%w: header says %d ticks, found %d frames", ErrTickMismatch, h.Ticks, len(rec.Frames))
	}

	s, err := sim.NewSession(sim.Config{Map: m, Tuning: h.Tuning, Seed: h.Seed})
	if err != nil {
		return Result{}, err
	}
	s.AddCharacter(h.Player)

	step := h.Tuning.TickDelta()
	one := make([]sim.Input, 1)
	var digest string
	for _, fr := range rec.Frames {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if gomath.Float32bits(fr.Input.DT) != gomath.Float32bits(step) {
			return Result{}, fmt.Errorf("%w: tick %d has dt=%v, want %v", ErrStepMismatch, fr.Tick, fr.Input.DT, step)
		}
		one[0] = fr.Input
		var tick uint64
		tick, digest = s.StepOnce(one)
		if tick != fr.Tick {
			return Result{}, fmt.Errorf("%w: frame for tick %d found at tick %d", ErrTickMismatch, fr.Tick, tick)
		}
		if digest != fr.Digest {
			log.Warn("replay diverged", zap.Uint64("tick", tick))
			return Result{}, &MismatchError{Tick: tick, Got: digest, Want: fr.Digest}
		}
	}

	res := Result{Ticks: len(rec.Frames), FinalDigest: digest}
	res.FinishTick, res.Finished = s.FinishTick(h.Player)
	if res.Finished != h.Finished || res.FinishTick != h.FinishTick {
		return Result{}, fmt.Errorf("%w: header claims finish=%v at %d, replay finished=%v at %d",
			ErrDigestMismatch, h.Finished, h.FinishTick, res.Finished, res.FinishTick)
	}

	log.Info("replay verified",
		zap.Int("ticks", res.Ticks),
		zap.Bool("finished", res.Finished),
		zap.Uint64("finish_tick", res.FinishTick),
	)
	return res, nil
}
