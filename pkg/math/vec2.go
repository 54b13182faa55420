package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector. The simulation uses it for the horizontal (XZ) plane.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{Mul(v.X, s), Mul(v.Y, s)}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return float32(v.X*other.X) + float32(v.Y*other.Y)
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns a unit vector, or the zero vector when v is shorter than Epsilon.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l < Epsilon {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// XZ lifts v back into 3D as an XZ-plane vector with the given height.
func (v Vec2) XZ(y float32) Vec3 {
	return Vec3{v.X, y, v.Y}
}
