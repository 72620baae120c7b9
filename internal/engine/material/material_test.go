package material

import (
	"testing"

	"github.com/Faultbox/skelbridge/internal/engine/texture"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

func TestVariantForTable(t *testing.T) {
	tests := []struct {
		blend rig.BlendMode
		pma   bool
		want  Variant
	}{
		{rig.BlendNormal, false, Normal},
		{rig.BlendAdditive, false, Additive},
		{rig.BlendMultiply, false, Multiply},
		{rig.BlendScreen, false, Screen},
		{rig.BlendNormal, true, NormalPMA},
		{rig.BlendAdditive, true, AdditivePMA},
		{rig.BlendMultiply, true, MultiplyPMA},
		{rig.BlendScreen, true, ScreenPMA},
	}

	seen := make(map[Variant]bool)
	for _, tt := range tests {
		got := VariantFor(tt.blend, tt.pma)
		if got != tt.want {
			t.Errorf("VariantFor(%v, %v) = %v, want %v", tt.blend, tt.pma, got, tt.want)
		}
		if got.Blend() != tt.blend || got.PMA() != tt.pma {
			t.Errorf("%v decodes to (%v, %v)", got, got.Blend(), got.PMA())
		}
		seen[got] = true
	}
	if len(seen) != VariantCount {
		t.Errorf("expected %d distinct variants, got %d", VariantCount, len(seen))
	}
}

func TestVariantForPanicsOnUnknownBlend(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	VariantFor(rig.BlendMode(9), false)
}

func TestVariantString(t *testing.T) {
	if AdditivePMA.String() != "additive_pma" {
		t.Errorf("String() = %s", AdditivePMA.String())
	}
	if Variant(42).String() != "variant(42)" {
		t.Errorf("String() = %s", Variant(42).String())
	}
}

func TestBlendStatePMA(t *testing.T) {
	// Premultiplied normal blending takes source color as-is.
	if NormalPMA.BlendState().SrcColor != One {
		t.Error("expected One src factor for normal_pma")
	}
	if Normal.BlendState().SrcColor != SrcAlpha {
		t.Error("expected SrcAlpha src factor for normal")
	}
}

func TestMaterialUpdate(t *testing.T) {
	tex := &texture.Texture{Path: "a.png"}
	m := New(Screen, nil, rig.White, rig.Color{})
	m.Update(tex, rig.Color{R: 1, A: 1}, rig.Color{B: 1})

	if m.Variant != Screen {
		t.Error("Update changed variant")
	}
	if m.Texture != tex || m.Color.R != 1 || m.DarkColor.B != 1 {
		t.Errorf("fields not updated: %+v", m)
	}
}
