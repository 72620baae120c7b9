package math

// Transform is a decomposed local transform: translation, rotation and scale.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: One}
}

// FromXYZ returns an identity transform translated to (x, y, z).
func FromXYZ(x, y, z float32) Transform {
	t := IdentityTransform()
	t.Translation = Vec3{x, y, z}
	return t
}

// Matrix composes translation * rotation * scale.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Translation.X, t.Translation.Y, t.Translation.Z).
		Mul(t.Rotation.ToMat4()).
		Mul(Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}
