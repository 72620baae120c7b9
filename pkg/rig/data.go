package rig

import (
	"errors"

	"github.com/Faultbox/skelbridge/pkg/math"
)

// Lookup errors.
var (
	ErrAnimationNotFound = errors.New("animation not found")
	ErrBoneNotFound      = errors.New("bone not found")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrAttachmentMissing = errors.New("attachment not found in skin")
)

// TextureRef identifies a texture owned by a registry outside the runtime.
// The zero value means no texture.
type TextureRef uint32

// AtlasPage is one texture page of an atlas.
type AtlasPage struct {
	Name               string
	File               string
	Width              int
	Height             int
	PremultipliedAlpha bool
	Texture            TextureRef
}

// AtlasRegion is a named sub-rectangle of a page with normalized UVs.
type AtlasRegion struct {
	Name          string
	Page          *AtlasPage
	X, Y          int
	Width, Height int
	U, V, U2, V2  float32
}

// Atlas is an ordered set of pages and the regions packed into them.
type Atlas struct {
	Pages   []*AtlasPage
	Regions []*AtlasRegion
	index   map[string]*AtlasRegion
}

// NewAtlas indexes regions by name and computes their UVs from page sizes.
func NewAtlas(pages []*AtlasPage, regions []*AtlasRegion) *Atlas {
	a := &Atlas{Pages: pages, Regions: regions, index: make(map[string]*AtlasRegion, len(regions))}
	for _, r := range regions {
		if r.Page != nil && r.Page.Width > 0 && r.Page.Height > 0 {
			w, h := float32(r.Page.Width), float32(r.Page.Height)
			r.U = float32(r.X) / w
			r.V = float32(r.Y) / h
			r.U2 = float32(r.X+r.Width) / w
			r.V2 = float32(r.Y+r.Height) / h
		}
		a.index[r.Name] = r
	}
	return a
}

// FindRegion returns the region with the given name, or nil.
func (a *Atlas) FindRegion(name string) *AtlasRegion {
	return a.index[name]
}

// PremultipliedAlpha reports the PMA flag of the first page.
func (a *Atlas) PremultipliedAlpha() bool {
	if len(a.Pages) == 0 {
		return false
	}
	return a.Pages[0].PremultipliedAlpha
}

// BoneData is the setup pose of a bone. Parent is -1 for the root.
type BoneData struct {
	Index    int
	Name     string
	Parent   int
	X, Y     float32
	Rotation float32
	ScaleX   float32
	ScaleY   float32
}

// SlotData is the setup state of a slot.
type SlotData struct {
	Index      int
	Name       string
	Bone       int
	Color      Color
	DarkColor  Color
	HasDark    bool
	Attachment string
	Blend      BlendMode
}

// AttachmentKind distinguishes quad regions from free-form meshes.
type AttachmentKind uint8

const (
	AttachmentRegion AttachmentKind = iota
	AttachmentMesh
)

// Attachment is textured geometry in bone-local space.
type Attachment struct {
	Name      string
	Path      string
	Kind      AttachmentKind
	Vertices  []math.Vec2
	UVs       []math.Vec2
	Triangles []uint16
	Color     Color
	Texture   TextureRef
}

type skinKey struct {
	slot int
	name string
}

// Skin maps (slot, attachment name) pairs to attachments.
type Skin struct {
	Name        string
	attachments map[skinKey]*Attachment
}

// NewSkin creates an empty skin.
func NewSkin(name string) *Skin {
	return &Skin{Name: name, attachments: make(map[skinKey]*Attachment)}
}

// SetAttachment registers an attachment for a slot.
func (s *Skin) SetAttachment(slot int, name string, a *Attachment) {
	s.attachments[skinKey{slot, name}] = a
}

// Attachment returns the attachment for a slot and name, or nil.
func (s *Skin) Attachment(slot int, name string) *Attachment {
	if s == nil {
		return nil
	}
	return s.attachments[skinKey{slot, name}]
}

// EventData describes a user event keyed on an animation timeline.
type EventData struct {
	Name   string
	Int    int
	Float  float32
	String string
}

// SkeletonData is the parsed, immutable description of a skeleton.
// It is shared by every Skeleton instantiated from it.
type SkeletonData struct {
	Name        string
	Bones       []*BoneData
	Slots       []*SlotData
	DefaultSkin *Skin
	Events      []*EventData
	Animations  []*Animation
}

// FindBone returns the bone data with the given name, or nil.
func (d *SkeletonData) FindBone(name string) *BoneData {
	for _, b := range d.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// FindSlot returns the slot data with the given name, or nil.
func (d *SkeletonData) FindSlot(name string) *SlotData {
	for _, s := range d.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FindAnimation returns the animation with the given name, or nil.
func (d *SkeletonData) FindAnimation(name string) *Animation {
	for _, a := range d.Animations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindEvent returns the event data with the given name, or nil.
func (d *SkeletonData) FindEvent(name string) *EventData {
	for _, e := range d.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}
