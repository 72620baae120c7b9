package rig

// CullDirection selects the front-face winding of emitted triangles.
type CullDirection uint8

const (
	CullClockwise CullDirection = iota
	CullCounterClockwise
)

// Settings configure a Controller's render output.
type Settings struct {
	CullDirection      CullDirection
	PremultipliedAlpha bool
}

// Renderable is the triangulated draw data of one visible slot.
type Renderable struct {
	SlotIndex          int
	Vertices           [][2]float32
	UVs                [][2]float32
	Indices            []uint16
	Color              Color
	DarkColor          Color
	BlendMode          BlendMode
	PremultipliedAlpha bool
	// Texture is the attachment's render object; zero when it has none.
	Texture TextureRef
}

// Controller bundles a skeleton with its animation state.
type Controller struct {
	Skeleton       *Skeleton
	AnimationState *AnimationState
	Settings       Settings
}

// NewController instantiates a skeleton and an empty animation state.
func NewController(data *SkeletonData, stateData *StateData, settings Settings) *Controller {
	return &Controller{
		Skeleton:       NewSkeleton(data),
		AnimationState: NewAnimationState(stateData),
		Settings:       settings,
	}
}

// Update advances the animation state by dt seconds, applies it and refreshes
// world transforms. A non-positive dt only re-poses the skeleton: time does not
// advance and no user or complete events fire.
func (c *Controller) Update(dt float32) {
	if dt > 0 {
		c.AnimationState.Update(dt)
		c.AnimationState.Apply(c.Skeleton)
	} else {
		c.AnimationState.Pose(c.Skeleton)
	}
	c.Skeleton.UpdateWorldTransform()
}

// Dispose tears down the animation state.
func (c *Controller) Dispose() {
	c.AnimationState.Dispose()
}

// Renderables triangulates every slot with a visible attachment, in draw order.
// Each call returns freshly allocated buffers owned by the caller.
func (c *Controller) Renderables() []Renderable {
	sk := c.Skeleton
	out := make([]Renderable, 0, len(sk.DrawOrder))
	for _, slot := range sk.DrawOrder {
		att := slot.attachment
		if att == nil || len(att.Triangles) == 0 {
			continue
		}

		vertices := make([][2]float32, len(att.Vertices))
		for i, v := range att.Vertices {
			w := slot.Bone.LocalToWorld(v)
			vertices[i] = [2]float32{w.X, w.Y}
		}
		uvs := make([][2]float32, len(att.UVs))
		for i, uv := range att.UVs {
			uvs[i] = [2]float32{uv.X, uv.Y}
		}
		indices := make([]uint16, len(att.Triangles))
		copy(indices, att.Triangles)
		if c.Settings.CullDirection == CullCounterClockwise {
			for t := 0; t+2 < len(indices); t += 3 {
				indices[t], indices[t+2] = indices[t+2], indices[t]
			}
		}

		color := sk.Color.Mul(slot.Color).Mul(att.Color)
		dark := Color{}
		if slot.HasDark {
			dark = slot.DarkColor
		}
		if c.Settings.PremultipliedAlpha {
			color = color.Premultiply()
		}

		out = append(out, Renderable{
			SlotIndex:          slot.Data.Index,
			Vertices:           vertices,
			UVs:                uvs,
			Indices:            indices,
			Color:              color,
			DarkColor:          dark,
			BlendMode:          slot.Blend,
			PremultipliedAlpha: c.Settings.PremultipliedAlpha,
			Texture:            att.Texture,
		})
	}
	return out
}
