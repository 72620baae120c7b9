// Package material maps slot blend modes to rasterizer material variants.
//
// Each of the four blend modes exists in a straight-alpha and a
// premultiplied-alpha form. The variant fixes the blend factors; a Material
// carries the per-slot texture and tints.
package material

import (
	"fmt"

	"github.com/Faultbox/skelbridge/internal/engine/texture"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// Variant is one of the eight blend/alpha combinations.
type Variant uint8

// Variants, straight alpha first.
const (
	Normal Variant = iota
	Additive
	Multiply
	Screen
	NormalPMA
	AdditivePMA
	MultiplyPMA
	ScreenPMA

	VariantCount = 8
)

var variantNames = [VariantCount]string{
	"normal", "additive", "multiply", "screen",
	"normal_pma", "additive_pma", "multiply_pma", "screen_pma",
}

// VariantFor selects the variant for a blend mode. It panics on a blend mode
// outside the four known ones.
func VariantFor(blend rig.BlendMode, pma bool) Variant {
	if blend > rig.BlendScreen {
		panic(fmt.Sprintf("material: unknown blend mode %d", blend))
	}
	v := Variant(blend)
	if pma {
		v += NormalPMA
	}
	return v
}

// Blend returns the blend mode the variant encodes.
func (v Variant) Blend() rig.BlendMode {
	return rig.BlendMode(v % NormalPMA)
}

// PMA reports whether the variant expects premultiplied color.
func (v Variant) PMA() bool {
	return v >= NormalPMA
}

func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

// Factor is a blend equation operand.
type Factor uint8

const (
	Zero Factor = iota
	One
	SrcColor
	OneMinusSrcColor
	SrcAlpha
	OneMinusSrcAlpha
	DstColor
)

// BlendState is the src/dst factor pair for color and alpha.
type BlendState struct {
	SrcColor, DstColor Factor
	SrcAlpha, DstAlpha Factor
}

var blendStates = [VariantCount]BlendState{
	Normal:      {SrcAlpha, OneMinusSrcAlpha, One, OneMinusSrcAlpha},
	Additive:    {SrcAlpha, One, One, One},
	Multiply:    {DstColor, OneMinusSrcAlpha, One, OneMinusSrcAlpha},
	Screen:      {One, OneMinusSrcColor, One, OneMinusSrcColor},
	NormalPMA:   {One, OneMinusSrcAlpha, One, OneMinusSrcAlpha},
	AdditivePMA: {One, One, One, One},
	MultiplyPMA: {DstColor, OneMinusSrcAlpha, One, OneMinusSrcAlpha},
	ScreenPMA:   {One, OneMinusSrcColor, One, OneMinusSrcColor},
}

// BlendState returns the fixed-function blend setup for the variant.
func (v Variant) BlendState() BlendState {
	return blendStates[v]
}

// Material is the per-slot render state of one variant.
type Material struct {
	Variant   Variant
	Texture   *texture.Texture
	Color     rig.Color
	DarkColor rig.Color
}

// New creates a material of the given variant.
func New(v Variant, tex *texture.Texture, color, dark rig.Color) *Material {
	return &Material{Variant: v, Texture: tex, Color: color, DarkColor: dark}
}

// Update rewrites the mutable fields in place.
func (m *Material) Update(tex *texture.Texture, color, dark rig.Color) {
	m.Texture = tex
	m.Color = color
	m.DarkColor = dark
}
