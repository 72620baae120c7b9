// Package math provides the small vector, quaternion and matrix types used by
// the skeleton bridge and its scene graph.
package math

import "math"

// Vec2 is a 2D vector.
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
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Rotate returns v rotated counter-clockwise by deg degrees.
func (v Vec2) Rotate(deg float32) Vec2 {
	s, c := SinCosDeg(deg)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Lerp interpolates between v and other.
func (v Vec2) Lerp(other Vec2, t float32) Vec2 {
	return Vec2{v.X + t*(other.X-v.X), v.Y + t*(other.Y-v.Y)}
}

// SinCosDeg returns sin and cos of an angle given in degrees.
func SinCosDeg(deg float32) (sin, cos float32) {
	rad := float64(deg) * math.Pi / 180
	return float32(math.Sin(rad)), float32(math.Cos(rad))
}

// Lerp interpolates between two scalars.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}
