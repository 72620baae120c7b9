package math

import (
	"math"
	"testing"
)

func TestVec2Rotate(t *testing.T) {
	v := Vec2{1, 0}
	got := v.Rotate(90)
	if math.Abs(float64(got.X)) > 0.0001 || math.Abs(float64(got.Y-1)) > 0.0001 {
		t.Errorf("Vec2.Rotate(90) = %v, want (0, 1)", got)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestQuatRotationZRoundTrip(t *testing.T) {
	tests := []float32{0, 15, 90, -45, 170}
	for _, deg := range tests {
		got := QuatFromRotationZ(deg).AngleZ()
		if math.Abs(float64(got-deg)) > 0.01 {
			t.Errorf("QuatFromRotationZ(%v).AngleZ() = %v", deg, got)
		}
	}
}

func TestQuatToMat4Identity(t *testing.T) {
	m := QuatIdentity().ToMat4()
	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I = %v, want %v", result, m)
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := IdentityTransform()
	tr.Translation = Vec3{10, 0, 0}
	tr.Rotation = QuatFromRotationZ(90)
	tr.Scale = Vec3{2, 2, 1}

	got := tr.Matrix().TransformPoint(Vec3{1, 0, 0})
	want := Vec3{10, 2, 0}
	if !got.ApproxEqual(want, 0.0001) {
		t.Errorf("TransformPoint() = %v, want %v", got, want)
	}
}

func TestTransformComposition(t *testing.T) {
	parent := FromXYZ(5, 5, 0)
	child := FromXYZ(1, 2, 3)

	global := parent.Matrix().Mul(child.Matrix())
	want := Vec3{6, 7, 3}
	if got := global.Translation(); !got.ApproxEqual(want, 0.0001) {
		t.Errorf("Translation() = %v, want %v", got, want)
	}
}
