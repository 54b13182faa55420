// Package world handles map loading and the reference collider.
package world

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/strafe/internal/movement"
	"github.com/Faultbox/strafe/pkg/math"
)

// ErrInvalidMap is returned for documents that fail schema or semantic checks.
var ErrInvalidMap = errors.New("invalid map")

//go:embed map.schema.json
var schemaJSON string

var mapSchema = jsonschema.MustCompileString("map.schema.json", schemaJSON)

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max math.Vec3
}

// Contains reports whether p lies inside the box, faces included.
func (b AABB) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Expand grows the box by r on every side.
func (b AABB) Expand(r float32) AABB {
	d := math.Vec3{X: r, Y: r, Z: r}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Plane is a solid half-space: points with Normal·p < Offset are inside.
// A nil Bounds means the plane is unbounded.
type Plane struct {
	Normal math.Vec3
	Offset float32
	Bounds *AABB
}

// Distance returns the signed distance of p from the surface.
func (pl Plane) Distance(p math.Vec3) float32 {
	return pl.Normal.Dot(p) - pl.Offset
}

// TriggerKind identifies what a trigger volume does.
type TriggerKind uint8

const (
	TriggerBoostPad TriggerKind = iota
	TriggerLaunchPad
	TriggerSpeedGate
	TriggerFinish
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerBoostPad:
		return "boost_pad"
	case TriggerLaunchPad:
		return "launch_pad"
	case TriggerSpeedGate:
		return "speed_gate"
	case TriggerFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Trigger is a map volume that modifies velocity or ends the run on entry.
// Only the payload matching Kind is set.
type Trigger struct {
	ID     int
	Name   string
	Kind   TriggerKind
	Volume AABB

	Boost  movement.BoostPad
	Launch movement.LaunchPad
	Gate   movement.SpeedGate
}

// Map is a parsed and validated map.
type Map struct {
	ID       string
	Name     string
	Spawn    math.Vec3
	SpawnYaw float32

	// Planes holds the ground (when authored), then ramps, then walls.
	Planes        []Plane
	Triggers      []Trigger
	GrapplePoints []movement.GrapplePoint

	// Digest is the sha256 of the source document. Recordings pin it.
	Digest string
}

type vec3 [3]float32

func (v vec3) Vec3() math.Vec3 { return math.Vec3{X: v[0], Y: v[1], Z: v[2]} }

type boxDoc struct {
	Min vec3 `json:"min"`
	Max vec3 `json:"max"`
}

type planeDoc struct {
	Normal vec3    `json:"normal"`
	Offset float32 `json:"offset"`
	Min    *vec3   `json:"min"`
	Max    *vec3   `json:"max"`
}

type padDoc struct {
	Name      string  `json:"name"`
	Min       vec3    `json:"min"`
	Max       vec3    `json:"max"`
	Direction vec3    `json:"direction"`
	Speed     float32 `json:"speed"`
}

type gateDoc struct {
	Name       string  `json:"name"`
	Min        vec3    `json:"min"`
	Max        vec3    `json:"max"`
	Multiplier float32 `json:"multiplier"`
	MinSpeed   float32 `json:"min_speed"`
}

type mapDoc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Spawn struct {
		Position vec3    `json:"position"`
		Yaw      float32 `json:"yaw"`
	} `json:"spawn"`
	GroundY       *float32   `json:"ground_y"`
	Walls         []planeDoc `json:"walls"`
	Ramps         []planeDoc `json:"ramps"`
	BoostPads     []padDoc   `json:"boost_pads"`
	LaunchPads    []padDoc   `json:"launch_pads"`
	SpeedGates    []gateDoc  `json:"speed_gates"`
	GrapplePoints []struct {
		Position vec3 `json:"position"`
	} `json:"grapple_points"`
	Finish *boxDoc `json:"finish"`
}

// Load reads and parses a map file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a YAML map document, validates it against the embedded
// schema and builds the typed map.
func Parse(data []byte) (*Map, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	// Round-trip through JSON so the validator sees JSON types.
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	var doc any
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	if err := mapSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	var md mapDoc
	if err := json.Unmarshal(js, &md); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	m, err := build(&md)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	sum := sha256.Sum256(data)
	m.Digest = hex.EncodeToString(sum[:])
	return m, nil
}

func build(md *mapDoc) (*Map, error) {
	m := &Map{
		ID:       md.ID,
		Name:     md.Name,
		Spawn:    md.Spawn.Position.Vec3(),
		SpawnYaw: md.Spawn.Yaw,
	}
	if md.GroundY != nil {
		m.Planes = append(m.Planes, Plane{Normal: math.Up, Offset: *md.GroundY})
	}
	for i, r := range md.Ramps {
		pl, err := r.plane()
		if err != nil {
			return nil, fmt.Errorf("ramps[%d]: %w", i, err)
		}
		m.Planes = append(m.Planes, pl)
	}
	for i, w := range md.Walls {
		pl, err := w.plane()
		if err != nil {
			return nil, fmt.Errorf("walls[%d]: %w", i, err)
		}
		m.Planes = append(m.Planes, pl)
	}

	add := func(tr Trigger) error {
		if !validBox(tr.Volume) {
			return fmt.Errorf("%s %q: min exceeds max", tr.Kind, tr.Name)
		}
		tr.ID = len(m.Triggers)
		m.Triggers = append(m.Triggers, tr)
		return nil
	}
	for _, p := range md.BoostPads {
		dir := p.Direction.Vec3().Normalize()
		if dir.IsZero() {
			return nil, fmt.Errorf("boost pad %q: zero direction", p.Name)
		}
		tr := Trigger{Name: p.Name, Kind: TriggerBoostPad, Volume: AABB{p.Min.Vec3(), p.Max.Vec3()},
			Boost: movement.BoostPad{Direction: dir, Speed: p.Speed}}
		if err := add(tr); err != nil {
			return nil, err
		}
	}
	for _, p := range md.LaunchPads {
		dir := p.Direction.Vec3().Normalize()
		if dir.IsZero() {
			return nil, fmt.Errorf("launch pad %q: zero direction", p.Name)
		}
		tr := Trigger{Name: p.Name, Kind: TriggerLaunchPad, Volume: AABB{p.Min.Vec3(), p.Max.Vec3()},
			Launch: movement.LaunchPad{Direction: dir, Speed: p.Speed}}
		if err := add(tr); err != nil {
			return nil, err
		}
	}
	for _, g := range md.SpeedGates {
		tr := Trigger{Name: g.Name, Kind: TriggerSpeedGate, Volume: AABB{g.Min.Vec3(), g.Max.Vec3()},
			Gate: movement.SpeedGate{Multiplier: g.Multiplier, MinSpeed: g.MinSpeed}}
		if err := add(tr); err != nil {
			return nil, err
		}
	}
	for _, gp := range md.GrapplePoints {
		m.GrapplePoints = append(m.GrapplePoints, movement.GrapplePoint{Position: gp.Position.Vec3()})
	}
	if md.Finish != nil {
		tr := Trigger{Name: "finish", Kind: TriggerFinish, Volume: AABB{md.Finish.Min.Vec3(), md.Finish.Max.Vec3()}}
		if err := add(tr); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (p planeDoc) plane() (Plane, error) {
	n := p.Normal.Vec3()
	length := n.Length()
	if length < math.Epsilon {
		return Plane{}, errors.New("zero normal")
	}
	// Normalising the normal rescales the offset with it.
	pl := Plane{Normal: n.Scale(1 / length), Offset: p.Offset / length}
	if p.Min != nil && p.Max != nil {
		b := AABB{p.Min.Vec3(), p.Max.Vec3()}
		if !validBox(b) {
			return Plane{}, errors.New("min exceeds max")
		}
		pl.Bounds = &b
	}
	return pl, nil
}

func validBox(b AABB) bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// TriggersAt returns the triggers whose volume contains p, in authored order.
func (m *Map) TriggersAt(p math.Vec3) []Trigger {
	var out []Trigger
	for _, tr := range m.Triggers {
		if tr.Volume.Contains(p) {
			out = append(out, tr)
		}
	}
	return out
}

// NearestGrapplePoint returns the closest grapple point within maxRange of p.
// Ties go to the first authored point.
func (m *Map) NearestGrapplePoint(p math.Vec3, maxRange float32) (movement.GrapplePoint, bool) {
	best := -1
	var bestDist float32
	for i, gp := range m.GrapplePoints {
		if d := gp.Position.Distance(p); d <= maxRange && (best < 0 || d < bestDist) {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return movement.GrapplePoint{}, false
	}
	return m.GrapplePoints[best], true
}

// HasFinish reports whether the map defines a finish volume.
func (m *Map) HasFinish() bool {
	for _, tr := range m.Triggers {
		if tr.Kind == TriggerFinish {
			return true
		}
	}
	return false
}
