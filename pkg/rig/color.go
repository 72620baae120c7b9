// Package rig is a small skeletal animation runtime: bone hierarchies, slots
// with textured attachments, keyframed animations and an animation state that
// reports track lifecycle events through a listener callback.
//
// Interpolation is linear. Curves, constraints and skinned (weighted) meshes
// are not supported.
package rig

import "fmt"

// Color is an RGBA color with float components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// White is the neutral tint.
var White = Color{1, 1, 1, 1}

// Mul returns the component-wise product of two colors.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Lerp interpolates between c and o.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		c.R + t*(o.R-c.R),
		c.G + t*(o.G-c.G),
		c.B + t*(o.B-c.B),
		c.A + t*(o.A-c.A),
	}
}

// Premultiply returns the color with RGB multiplied by alpha.
func (c Color) Premultiply() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// BlendMode selects how a slot's pixels combine with the framebuffer.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendMultiply
	BlendScreen
)

var blendNames = [...]string{"normal", "additive", "multiply", "screen"}

// String returns the lowercase blend mode name.
func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(b))
}

// ParseBlendMode converts a name to a BlendMode. Empty means normal.
func ParseBlendMode(name string) (BlendMode, error) {
	if name == "" {
		return BlendNormal, nil
	}
	for i, n := range blendNames {
		if n == name {
			return BlendMode(i), nil
		}
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", name)
}
