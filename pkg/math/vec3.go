// Package math provides the float32 vector types shared by the simulation.
//
// Every product that feeds an addition is rounded explicitly with float32(...)
// so the compiler cannot fuse it into a single FMA instruction. Fused and
// unfused results differ in the last bit, which breaks replay digests between
// amd64 and arm64 builds.
package math

import "github.com/chewxy/math32"

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-6

// Mul returns a*b rounded to float32. The explicit conversion keeps the
// product from being fused into a following addition.
func Mul(a, b float32) float32 {
	return float32(a * b)
}

// Up is the world up axis.
var Up = Vec3{0, 1, 0}

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{Mul(v.X, s), Mul(v.Y, s), Mul(v.Z, s)}
}

// AddScaled returns v + other*s.
func (v Vec3) AddScaled(other Vec3, s float32) Vec3 {
	return Vec3{
		v.X + float32(other.X*s),
		v.Y + float32(other.Y*s),
		v.Z + float32(other.Z*s),
	}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return float32(v.X*other.X) + float32(v.Y*other.Y) + float32(v.Z*other.Z)
}

// LengthSq returns the squared magnitude.
func (v Vec3) LengthSq() float32 {
	return v.Dot(v)
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSq())
}

// Normalize returns a unit vector, or the zero vector when v is shorter than Epsilon.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < Epsilon {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// XZ returns the XZ components as Vec2.
func (v Vec3) XZ() Vec2 {
	return Vec2{v.X, v.Z}
}

// Horizontal returns v with the Y component dropped.
func (v Vec3) Horizontal() Vec3 {
	return Vec3{v.X, 0, v.Z}
}

// HorizontalLength returns the magnitude of the XZ components.
func (v Vec3) HorizontalLength() float32 {
	return v.XZ().Length()
}

// RotateY rotates v about the world up axis by angle radians.
// Positive angles turn -Z (forward) towards -X.
func (v Vec3) RotateY(angle float32) Vec3 {
	s, c := math32.Sin(angle), math32.Cos(angle)
	return Vec3{
		X: float32(v.X*c) + float32(v.Z*s),
		Y: v.Y,
		Z: float32(-v.X*s) + float32(v.Z*c),
	}
}

// ClampLength rescales v so its magnitude does not exceed max.
func (v Vec3) ClampLength(max float32) Vec3 {
	l := v.Length()
	if l <= max || l < Epsilon {
		return v
	}
	return v.Scale(max / l)
}

// ApproxEqual reports whether every component of v and other differs by at most tol.
func (v Vec3) ApproxEqual(other Vec3, tol float32) bool {
	return math32.Abs(v.X-other.X) <= tol &&
		math32.Abs(v.Y-other.Y) <= tol &&
		math32.Abs(v.Z-other.Z) <= tol
}
