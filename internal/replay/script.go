// Package replay records runs as compressed input logs and verifies them by
// re-simulating every tick.
package replay

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/strafe/internal/game/sim"
	"github.com/Faultbox/strafe/pkg/math"
)

// Segment holds one input state for a number of ticks.
type Segment struct {
	Ticks    int  `yaml:"ticks"`
	Forward  bool `yaml:"forward"`
	Backward bool `yaml:"backward"`
	Left     bool `yaml:"left"`
	Right    bool `yaml:"right"`
	Jump     bool `yaml:"jump"`
	Crouch   bool `yaml:"crouch"`
	Grapple  bool `yaml:"grapple"`
	Fire     bool `yaml:"fire"`
	Holster  bool `yaml:"holster"`

	// Yaw, when set, snaps the view at the start of the segment.
	Yaw *float32 `yaml:"yaw"`
	// YawRate turns the view in radians per second while the segment runs.
	YawRate float32 `yaml:"yaw_rate"`
	// Pitch holds the view pitch for the whole segment, radians up.
	Pitch float32 `yaml:"pitch"`
}

// Script is a scripted input sequence, used to produce recordings without a
// live client.
type Script struct {
	Segments []Segment `yaml:"segments"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if len(s.Segments) == 0 {
		return nil, errors.New("script has no segments")
	}
	for i, seg := range s.Segments {
		if seg.Ticks <= 0 {
			return nil, fmt.Errorf("segment %d: ticks must be positive, got %d", i, seg.Ticks)
		}
	}
	return &s, nil
}

// Ticks returns the script length in ticks.
func (s *Script) Ticks() int {
	n := 0
	for _, seg := range s.Segments {
		n += seg.Ticks
	}
	return n
}

// Inputs expands the script into one input per tick of length dt, starting
// from yaw.
func (s *Script) Inputs(yaw, dt float32) []sim.Input {
	inputs := make([]sim.Input, 0, s.Ticks())
	for _, seg := range s.Segments {
		if seg.Yaw != nil {
			yaw = *seg.Yaw
		}
		turn := math.Mul(seg.YawRate, dt)
		for i := 0; i < seg.Ticks; i++ {
			inputs = append(inputs, sim.Input{
				Forward:  seg.Forward,
				Backward: seg.Backward,
				Left:     seg.Left,
				Right:    seg.Right,
				Jump:     seg.Jump,
				Crouch:   seg.Crouch,
				Grapple:  seg.Grapple,
				Fire:     seg.Fire,
				Holster:  seg.Holster,
				Yaw:      yaw,
				Pitch:    seg.Pitch,
				DT:       dt,
			})
			yaw += turn
		}
	}
	return inputs
}
