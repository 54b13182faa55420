package world

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/strafe/internal/movement"
	"github.com/Faultbox/strafe/pkg/math"
)

const testMap = `
id: test_map
name: Test
spawn:
  position: [0, 0, 0]
  yaw: 0.5
ground_y: 0
walls:
  - normal: [-2, 0, 0]
    offset: -400
ramps:
  - normal: [0, 1, 1]
    offset: 0
    min: [-100, -100, 100]
    max: [100, 100, 300]
boost_pads:
  - name: boost
    min: [-10, -10, -10]
    max: [10, 10, 10]
    direction: [0, 0, -2]
    speed: 250
launch_pads:
  - min: [50, 0, 50]
    max: [60, 10, 60]
    direction: [0, 1, 0]
    speed: 600
speed_gates:
  - name: gate
    min: [-5, -5, -5]
    max: [5, 5, 5]
    multiplier: 1.5
    min_speed: 100
grapple_points:
  - position: [0, 500, 0]
  - position: [0, 300, 0]
finish:
  min: [-100, 0, -1000]
  max: [100, 100, -900]
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(testMap))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if m.ID != "test_map" || m.Name != "Test" || m.SpawnYaw != 0.5 {
		t.Errorf("header = %q %q %v", m.ID, m.Name, m.SpawnYaw)
	}
	if len(m.Planes) != 3 {
		t.Fatalf("planes = %d, want 3 (ground, ramp, wall)", len(m.Planes))
	}
	if m.Planes[0].Normal != math.Up || m.Planes[0].Bounds != nil {
		t.Errorf("ground plane = %+v", m.Planes[0])
	}
	if m.Planes[1].Bounds == nil {
		t.Error("ramp lost its bounds")
	}
	wall := m.Planes[2]
	if !wall.Normal.ApproxEqual(math.Vec3{X: -1}, 1e-6) || wall.Offset != -200 {
		t.Errorf("wall not normalised: %+v", wall)
	}

	wantKinds := []TriggerKind{TriggerBoostPad, TriggerLaunchPad, TriggerSpeedGate, TriggerFinish}
	if len(m.Triggers) != len(wantKinds) {
		t.Fatalf("triggers = %d, want %d", len(m.Triggers), len(wantKinds))
	}
	for i, tr := range m.Triggers {
		if tr.ID != i || tr.Kind != wantKinds[i] {
			t.Errorf("trigger %d = id %d kind %v", i, tr.ID, tr.Kind)
		}
	}
	if m.Triggers[0].Boost.Direction != (math.Vec3{Z: -1}) {
		t.Errorf("boost direction not normalised: %v", m.Triggers[0].Boost.Direction)
	}
	if m.Triggers[2].Gate != (movement.SpeedGate{Multiplier: 1.5, MinSpeed: 100}) {
		t.Errorf("gate = %+v", m.Triggers[2].Gate)
	}
	if !m.HasFinish() {
		t.Error("finish missing")
	}
	if len(m.Digest) != 64 {
		t.Errorf("digest = %q", m.Digest)
	}
}

func TestParse_DigestTracksContent(t *testing.T) {
	a, err := Parse([]byte(testMap))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte(testMap + "\n# comment\n"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Digest == b.Digest {
		t.Error("different documents share a digest")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "id: [unclosed"},
		{"missing id", "spawn: {position: [0, 0, 0]}"},
		{"missing spawn", "id: a"},
		{"bad id", "id: 'Has Spaces'\nspawn: {position: [0, 0, 0]}"},
		{"short vector", "id: a\nspawn: {position: [0, 0]}"},
		{"unknown field", "id: a\nspawn: {position: [0, 0, 0]}\nlava: true"},
		{"negative pad speed", "id: a\nspawn: {position: [0, 0, 0]}\nboost_pads: [{min: [0,0,0], max: [1,1,1], direction: [0,1,0], speed: -1}]"},
		{"zero gate multiplier", "id: a\nspawn: {position: [0, 0, 0]}\nspeed_gates: [{min: [0,0,0], max: [1,1,1], multiplier: 0}]"},
		{"ramp without bounds", "id: a\nspawn: {position: [0, 0, 0]}\nramps: [{normal: [0,1,1], offset: 0}]"},
		{"zero wall normal", "id: a\nspawn: {position: [0, 0, 0]}\nwalls: [{normal: [0,0,0], offset: 0}]"},
		{"zero pad direction", "id: a\nspawn: {position: [0, 0, 0]}\nlaunch_pads: [{min: [0,0,0], max: [1,1,1], direction: [0,0,0], speed: 5}]"},
		{"inverted box", "id: a\nspawn: {position: [0, 0, 0]}\nfinish: {min: [1,1,1], max: [0,0,0]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidMap) {
				t.Errorf("Parse() error = %v, want ErrInvalidMap", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.yaml")
	if err := os.WriteFile(path, []byte(testMap), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.ID != "test_map" {
		t.Errorf("ID = %q", m.ID)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTriggersAt(t *testing.T) {
	m, err := Parse([]byte(testMap))
	if err != nil {
		t.Fatal(err)
	}
	got := m.TriggersAt(math.Vec3{})
	if len(got) != 2 || got[0].Kind != TriggerBoostPad || got[1].Kind != TriggerSpeedGate {
		t.Errorf("TriggersAt(origin) = %+v", got)
	}
	if got := m.TriggersAt(math.Vec3{X: 1000}); len(got) != 0 {
		t.Errorf("TriggersAt(far) = %+v", got)
	}
}

func TestNearestGrapplePoint(t *testing.T) {
	m, err := Parse([]byte(testMap))
	if err != nil {
		t.Fatal(err)
	}
	gp, ok := m.NearestGrapplePoint(math.Vec3{}, 1000)
	if !ok || gp.Position.Y != 300 {
		t.Errorf("nearest = %+v, %v; want y=300", gp, ok)
	}
	if _, ok := m.NearestGrapplePoint(math.Vec3{}, 200); ok {
		t.Error("found a point beyond range")
	}
}

func TestSampleMaps(t *testing.T) {
	mgr := NewManager()
	if err := mgr.LoadDir(filepath.Join("..", "..", "..", "maps")); err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}
	if mgr.Count() == 0 {
		t.Fatal("no sample maps loaded")
	}
	for _, id := range mgr.IDs() {
		m, _ := mgr.Get(id)
		if !m.HasFinish() {
			t.Errorf("sample map %s has no finish", id)
		}
	}
}

func TestManager_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(testMap), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mgr := NewManager()
	if err := mgr.LoadDir(dir); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, ok := mgr.Get("test_map"); !ok {
		t.Error("first map should stay loaded")
	}
}
