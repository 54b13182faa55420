package world

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/strafe/pkg/math"
)

// Contact is what the collision layer reports about a character's
// surroundings at the start of a tick.
type Contact struct {
	Grounded bool      // standing on a walkable surface
	Touching bool      // in contact with any floor-like surface, walkable or not
	Normal   math.Vec3 // normal of that surface

	WallLeft    bool
	WallRight   bool
	WallNormalX float32
	WallNormalZ float32
}

// Default PlaneWorld parameters, in world units.
const (
	DefaultSnapDistance       = 1
	DefaultWallDetectDistance = 24
	DefaultThickness          = 64
	DefaultWalkableNormalY    = 0.7

	wallNormalMaxY = 0.1
	wallSideDot    = 0.5
	slideIters     = 3
)

// PlaneWorld is a reference collider over the half-spaces of a Map. It treats
// the character as a point and is meant for tools and tests, not as a
// general collision engine.
type PlaneWorld struct {
	planes []Plane

	SnapDistance       float32 // floor contact tolerance above a surface
	WallDetectDistance float32 // reach of the side wall probes
	Thickness          float32 // how far behind a surface still counts as inside it
	WalkableNormalY    float32 // minimum normal Y for a grounded contact
}

// NewPlaneWorld builds a collider for m with default parameters.
func NewPlaneWorld(m *Map) *PlaneWorld {
	return &PlaneWorld{
		planes:             m.Planes,
		SnapDistance:       DefaultSnapDistance,
		WallDetectDistance: DefaultWallDetectDistance,
		Thickness:          DefaultThickness,
		WalkableNormalY:    DefaultWalkableNormalY,
	}
}

func (w *PlaneWorld) inBounds(pl Plane, p math.Vec3, margin float32) bool {
	return pl.Bounds == nil || pl.Bounds.Expand(margin).Contains(p)
}

// Contact samples floor and wall contact at pos. yaw selects which side
// of the character a wall is on.
func (w *PlaneWorld) Contact(pos math.Vec3, yaw float32) Contact {
	var c Contact
	right := math.Vec3{X: math32.Cos(yaw), Z: -math32.Sin(yaw)}

	floorDist := math32.Inf(1)
	wallDist := math32.Inf(1)
	for _, pl := range w.planes {
		d := pl.Distance(pos)
		if d < -w.Thickness {
			continue
		}
		switch {
		case pl.Normal.Y > wallNormalMaxY:
			if d > w.SnapDistance || !w.inBounds(pl, pos, w.SnapDistance) {
				continue
			}
			if ad := math32.Abs(d); ad < floorDist {
				floorDist = ad
				c.Touching = true
				c.Normal = pl.Normal
				c.Grounded = pl.Normal.Y >= w.WalkableNormalY
			}
		case math32.Abs(pl.Normal.Y) < wallNormalMaxY:
			if d > w.WallDetectDistance || !w.inBounds(pl, pos, w.WallDetectDistance) {
				continue
			}
			ad := math32.Abs(d)
			if ad >= wallDist {
				continue
			}
			// The wall lies along -normal from the character.
			side := pl.Normal.Scale(-1).Dot(right)
			if side > wallSideDot || side < -wallSideDot {
				wallDist = ad
				c.WallRight = side > 0
				c.WallLeft = side < 0
				c.WallNormalX = pl.Normal.X
				c.WallNormalZ = pl.Normal.Z
			}
		}
	}
	return c
}

// MoveAndSlide integrates pos by vel over dt, then pushes the result out of
// any penetrated surface and removes the velocity component into it.
func (w *PlaneWorld) MoveAndSlide(pos, vel math.Vec3, dt float32) (math.Vec3, math.Vec3) {
	next := pos.AddScaled(vel, dt)
	for iter := 0; iter < slideIters; iter++ {
		hit := false
		for _, pl := range w.planes {
			d := pl.Distance(next)
			if d >= 0 || d < -w.Thickness || !w.inBounds(pl, next, 0) {
				continue
			}
			next = next.AddScaled(pl.Normal, -d)
			if into := vel.Dot(pl.Normal); into < 0 {
				vel = vel.Sub(pl.Normal.Scale(into))
			}
			hit = true
		}
		if !hit {
			break
		}
	}
	return next, vel
}

// Raycast returns the nearest point where the ray from origin along dir
// crosses the front face of a surface within maxDist. dir must be unit
// length.
func (w *PlaneWorld) Raycast(origin, dir math.Vec3, maxDist float32) (math.Vec3, bool) {
	best := maxDist
	var hit math.Vec3
	found := false
	for _, pl := range w.planes {
		denom := dir.Dot(pl.Normal)
		if denom >= 0 {
			continue
		}
		d := pl.Distance(origin)
		if d < 0 {
			continue
		}
		t := d / -denom
		if t > best {
			continue
		}
		p := origin.AddScaled(dir, t)
		if !w.inBounds(pl, p, w.SnapDistance) {
			continue
		}
		best, hit, found = t, p, true
	}
	return hit, found
}
