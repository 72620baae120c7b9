package rig

import (
	"fmt"

	"github.com/Faultbox/skelbridge/pkg/math"
)

// BoneHandle identifies a bone inside a Skeleton by index.
type BoneHandle int

// Bone is a posed bone. X, Y, Rotation (degrees), ScaleX and ScaleY are the
// local transform relative to the parent; the world transform is derived by
// UpdateWorldTransform.
type Bone struct {
	Data     *BoneData
	X, Y     float32
	Rotation float32
	ScaleX   float32
	ScaleY   float32

	parent   *Bone
	children []*Bone
	pinned   bool

	a, b, c, d     float32
	worldX, worldY float32
}

// Handle returns the bone's handle.
func (b *Bone) Handle() BoneHandle { return BoneHandle(b.Data.Index) }

// Parent returns the parent bone, or nil for the root.
func (b *Bone) Parent() *Bone { return b.parent }

// Children returns the direct children in skeleton order.
func (b *Bone) Children() []*Bone { return b.children }

// Pinned reports whether animation timelines leave this bone alone.
func (b *Bone) Pinned() bool { return b.pinned }

// SetPinned stops (or resumes) animation timelines from writing the bone's
// local transform. A pinned bone keeps whatever pose was last assigned to it.
func (b *Bone) SetPinned(pinned bool) { b.pinned = pinned }

// SetToSetupPose resets the local transform to the setup pose.
func (b *Bone) SetToSetupPose() {
	b.X = b.Data.X
	b.Y = b.Data.Y
	b.Rotation = b.Data.Rotation
	b.ScaleX = b.Data.ScaleX
	b.ScaleY = b.Data.ScaleY
}

// WorldPosition returns the bone origin in skeleton space.
func (b *Bone) WorldPosition() math.Vec2 {
	return math.Vec2{X: b.worldX, Y: b.worldY}
}

// LocalToWorld transforms a bone-local point into skeleton space.
func (b *Bone) LocalToWorld(p math.Vec2) math.Vec2 {
	return math.Vec2{
		X: p.X*b.a + p.Y*b.b + b.worldX,
		Y: p.X*b.c + p.Y*b.d + b.worldY,
	}
}

// UpdateWorldTransform composes the local transform with the parent's world
// transform. Parents must be updated first.
func (b *Bone) UpdateWorldTransform() {
	sin, cos := math.SinCosDeg(b.Rotation)
	la, lb := cos*b.ScaleX, -sin*b.ScaleY
	lc, ld := sin*b.ScaleX, cos*b.ScaleY

	p := b.parent
	if p == nil {
		b.a, b.b, b.c, b.d = la, lb, lc, ld
		b.worldX, b.worldY = b.X, b.Y
		return
	}
	b.worldX = p.a*b.X + p.b*b.Y + p.worldX
	b.worldY = p.c*b.X + p.d*b.Y + p.worldY
	b.a = p.a*la + p.b*lc
	b.b = p.a*lb + p.b*ld
	b.c = p.c*la + p.d*lc
	b.d = p.c*lb + p.d*ld
}

// Slot holds the current attachment and tint of a SlotData.
type Slot struct {
	Data      *SlotData
	Bone      *Bone
	Color     Color
	DarkColor Color
	HasDark   bool
	Blend     BlendMode

	attachment *Attachment
}

// Attachment returns the visible attachment, or nil.
func (s *Slot) Attachment() *Attachment { return s.attachment }

// SetAttachment changes the visible attachment. nil hides the slot.
func (s *Slot) SetAttachment(a *Attachment) { s.attachment = a }

// SetToSetupPose resets tint, blend mode and attachment.
func (s *Slot) SetToSetupPose(skin *Skin) {
	s.Color = s.Data.Color
	s.DarkColor = s.Data.DarkColor
	s.HasDark = s.Data.HasDark
	s.Blend = s.Data.Blend
	s.attachment = nil
	if s.Data.Attachment != "" {
		s.attachment = skin.Attachment(s.Data.Index, s.Data.Attachment)
	}
}

// Skeleton is a posable instance of SkeletonData.
type Skeleton struct {
	Data      *SkeletonData
	Bones     []*Bone
	Slots     []*Slot
	DrawOrder []*Slot
	Skin      *Skin
	Color     Color
}

// NewSkeleton instantiates data in its setup pose.
// Bone data must list parents before children.
func NewSkeleton(data *SkeletonData) *Skeleton {
	s := &Skeleton{
		Data:  data,
		Bones: make([]*Bone, len(data.Bones)),
		Slots: make([]*Slot, len(data.Slots)),
		Skin:  data.DefaultSkin,
		Color: White,
	}
	for i, bd := range data.Bones {
		bone := &Bone{Data: bd}
		if bd.Parent >= 0 {
			bone.parent = s.Bones[bd.Parent]
			bone.parent.children = append(bone.parent.children, bone)
		}
		s.Bones[i] = bone
	}
	for i, sd := range data.Slots {
		s.Slots[i] = &Slot{Data: sd, Bone: s.Bones[sd.Bone]}
	}
	s.DrawOrder = append([]*Slot(nil), s.Slots...)
	s.SetToSetupPose()
	s.UpdateWorldTransform()
	return s
}

// BoneRoot returns the root bone, or nil for a skeleton without bones.
func (s *Skeleton) BoneRoot() *Bone {
	if len(s.Bones) == 0 {
		return nil
	}
	return s.Bones[0]
}

// Bone resolves a handle.
func (s *Skeleton) Bone(h BoneHandle) (*Bone, bool) {
	if h < 0 || int(h) >= len(s.Bones) {
		return nil, false
	}
	return s.Bones[h], true
}

// FindBone returns the bone with the given name, or nil.
func (s *Skeleton) FindBone(name string) *Bone {
	for _, b := range s.Bones {
		if b.Data.Name == name {
			return b
		}
	}
	return nil
}

// FindSlot returns the slot with the given name, or nil.
func (s *Skeleton) FindSlot(name string) *Slot {
	for _, sl := range s.Slots {
		if sl.Data.Name == name {
			return sl
		}
	}
	return nil
}

// SetAttachment shows the named attachment from the skin in the named slot.
// An empty attachment name hides the slot.
func (s *Skeleton) SetAttachment(slotName, attachmentName string) error {
	slot := s.FindSlot(slotName)
	if slot == nil {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, slotName)
	}
	if attachmentName == "" {
		slot.SetAttachment(nil)
		return nil
	}
	a := s.Skin.Attachment(slot.Data.Index, attachmentName)
	if a == nil {
		return fmt.Errorf("%w: %s/%s", ErrAttachmentMissing, slotName, attachmentName)
	}
	slot.SetAttachment(a)
	return nil
}

// SetToSetupPose resets every bone and slot.
func (s *Skeleton) SetToSetupPose() {
	for _, b := range s.Bones {
		b.SetToSetupPose()
	}
	for _, sl := range s.Slots {
		sl.SetToSetupPose(s.Skin)
	}
}

// resetPose returns unpinned bones and slot tints to setup before timelines
// are applied. Attachments and blend modes are left as they are.
func (s *Skeleton) resetPose() {
	for _, b := range s.Bones {
		if !b.pinned {
			b.SetToSetupPose()
		}
	}
	for _, sl := range s.Slots {
		sl.Color = sl.Data.Color
	}
}

// UpdateWorldTransform recomputes world transforms for every bone.
func (s *Skeleton) UpdateWorldTransform() {
	for _, b := range s.Bones {
		b.UpdateWorldTransform()
	}
}
