package formats

import (
	"fmt"
	"sort"

	"github.com/Faultbox/skelbridge/pkg/math"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// SkeletonDocument is the encoding-neutral skeleton layout shared by the text
// and binary forms.
type SkeletonDocument struct {
	Name       string                                   `yaml:"name" cbor:"name"`
	Bones      []BoneDocument                           `yaml:"bones" cbor:"bones"`
	Slots      []SlotDocument                           `yaml:"slots" cbor:"slots"`
	Skin       map[string]map[string]AttachmentDocument `yaml:"skin" cbor:"skin"`
	Events     map[string]EventDocument                 `yaml:"events,omitempty" cbor:"events,omitempty"`
	Animations map[string]AnimationDocument             `yaml:"animations,omitempty" cbor:"animations,omitempty"`
}

// BoneDocument is a bone's setup pose. Scale defaults to 1.
type BoneDocument struct {
	Name     string   `yaml:"name" cbor:"name"`
	Parent   string   `yaml:"parent,omitempty" cbor:"parent,omitempty"`
	X        float32  `yaml:"x,omitempty" cbor:"x,omitempty"`
	Y        float32  `yaml:"y,omitempty" cbor:"y,omitempty"`
	Rotation float32  `yaml:"rotation,omitempty" cbor:"rotation,omitempty"`
	ScaleX   *float32 `yaml:"scaleX,omitempty" cbor:"scaleX,omitempty"`
	ScaleY   *float32 `yaml:"scaleY,omitempty" cbor:"scaleY,omitempty"`
}

// SlotDocument is a slot's setup state. Colors are hex rrggbb[aa].
type SlotDocument struct {
	Name       string `yaml:"name" cbor:"name"`
	Bone       string `yaml:"bone" cbor:"bone"`
	Attachment string `yaml:"attachment,omitempty" cbor:"attachment,omitempty"`
	Color      string `yaml:"color,omitempty" cbor:"color,omitempty"`
	Dark       string `yaml:"dark,omitempty" cbor:"dark,omitempty"`
	Blend      string `yaml:"blend,omitempty" cbor:"blend,omitempty"`
}

// AttachmentDocument is either a "region" quad or a "mesh".
// Mesh vertices and UVs are flat x,y pairs; UVs are relative to the region.
type AttachmentDocument struct {
	Type      string    `yaml:"type,omitempty" cbor:"type,omitempty"`
	Path      string    `yaml:"path,omitempty" cbor:"path,omitempty"`
	X         float32   `yaml:"x,omitempty" cbor:"x,omitempty"`
	Y         float32   `yaml:"y,omitempty" cbor:"y,omitempty"`
	Rotation  float32   `yaml:"rotation,omitempty" cbor:"rotation,omitempty"`
	ScaleX    *float32  `yaml:"scaleX,omitempty" cbor:"scaleX,omitempty"`
	ScaleY    *float32  `yaml:"scaleY,omitempty" cbor:"scaleY,omitempty"`
	Width     float32   `yaml:"width,omitempty" cbor:"width,omitempty"`
	Height    float32   `yaml:"height,omitempty" cbor:"height,omitempty"`
	Color     string    `yaml:"color,omitempty" cbor:"color,omitempty"`
	Vertices  []float32 `yaml:"vertices,omitempty" cbor:"vertices,omitempty"`
	UVs       []float32 `yaml:"uvs,omitempty" cbor:"uvs,omitempty"`
	Triangles []uint16  `yaml:"triangles,omitempty" cbor:"triangles,omitempty"`
}

// EventDocument holds the default payload of a user event.
type EventDocument struct {
	Int    int     `yaml:"int,omitempty" cbor:"int,omitempty"`
	Float  float32 `yaml:"float,omitempty" cbor:"float,omitempty"`
	String string  `yaml:"string,omitempty" cbor:"string,omitempty"`
}

// AnimationDocument groups timelines by bone and slot name.
type AnimationDocument struct {
	Bones  map[string]BoneTimelinesDocument `yaml:"bones,omitempty" cbor:"bones,omitempty"`
	Slots  map[string]SlotTimelinesDocument `yaml:"slots,omitempty" cbor:"slots,omitempty"`
	Events []EventKeyDocument               `yaml:"events,omitempty" cbor:"events,omitempty"`
}

// BoneTimelinesDocument lists keys per bone channel.
type BoneTimelinesDocument struct {
	Rotate    []RotateKeyDocument `yaml:"rotate,omitempty" cbor:"rotate,omitempty"`
	Translate []XYKeyDocument     `yaml:"translate,omitempty" cbor:"translate,omitempty"`
	Scale     []XYKeyDocument     `yaml:"scale,omitempty" cbor:"scale,omitempty"`
}

// SlotTimelinesDocument lists keys per slot channel.
type SlotTimelinesDocument struct {
	Attachment []AttachmentKeyDocument `yaml:"attachment,omitempty" cbor:"attachment,omitempty"`
	Color      []ColorKeyDocument      `yaml:"color,omitempty" cbor:"color,omitempty"`
}

// RotateKeyDocument is a rotation key in degrees.
type RotateKeyDocument struct {
	Time  float32 `yaml:"time" cbor:"time"`
	Angle float32 `yaml:"angle" cbor:"angle"`
}

// XYKeyDocument is a translate or scale key.
type XYKeyDocument struct {
	Time float32 `yaml:"time" cbor:"time"`
	X    float32 `yaml:"x" cbor:"x"`
	Y    float32 `yaml:"y" cbor:"y"`
}

// AttachmentKeyDocument switches the visible attachment; empty name hides.
type AttachmentKeyDocument struct {
	Time float32 `yaml:"time" cbor:"time"`
	Name string  `yaml:"name" cbor:"name"`
}

// ColorKeyDocument is a slot tint key.
type ColorKeyDocument struct {
	Time  float32 `yaml:"time" cbor:"time"`
	Color string  `yaml:"color" cbor:"color"`
}

// EventKeyDocument fires a user event.
type EventKeyDocument struct {
	Time float32 `yaml:"time" cbor:"time"`
	Name string  `yaml:"name" cbor:"name"`
}

func scaleOr1(p *float32) float32 {
	if p == nil {
		return 1
	}
	return *p
}

// BuildSkeleton resolves a document against an atlas. Attachments take their
// texture from the page holding their region, so atlas pages should be
// registered with a texture registry before building.
func BuildSkeleton(doc *SkeletonDocument, atlas *rig.Atlas) (*rig.SkeletonData, error) {
	if len(doc.Bones) == 0 {
		return nil, fmt.Errorf("%w: no bones", ErrInvalidSkeleton)
	}

	data := &rig.SkeletonData{Name: doc.Name}
	bones := make(map[string]int, len(doc.Bones))
	for i, bd := range doc.Bones {
		if _, dup := bones[bd.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate bone %q", ErrInvalidSkeleton, bd.Name)
		}
		parent := -1
		if bd.Parent != "" {
			p, ok := bones[bd.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: bone %q: parent %q must be listed before it", ErrInvalidSkeleton, bd.Name, bd.Parent)
			}
			parent = p
		} else if i != 0 {
			return nil, fmt.Errorf("%w: bone %q has no parent; only the first bone may be the root", ErrInvalidSkeleton, bd.Name)
		}
		bones[bd.Name] = i
		data.Bones = append(data.Bones, &rig.BoneData{
			Index:    i,
			Name:     bd.Name,
			Parent:   parent,
			X:        bd.X,
			Y:        bd.Y,
			Rotation: bd.Rotation,
			ScaleX:   scaleOr1(bd.ScaleX),
			ScaleY:   scaleOr1(bd.ScaleY),
		})
	}

	slots := make(map[string]int, len(doc.Slots))
	for i, sd := range doc.Slots {
		bone, ok := bones[sd.Bone]
		if !ok {
			return nil, fmt.Errorf("%w: slot %q: unknown bone %q", ErrInvalidSkeleton, sd.Name, sd.Bone)
		}
		color, err := parseColor(sd.Color)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", sd.Name, err)
		}
		blend, err := rig.ParseBlendMode(sd.Blend)
		if err != nil {
			return nil, fmt.Errorf("%w: slot %q: %v", ErrInvalidSkeleton, sd.Name, err)
		}
		slot := &rig.SlotData{
			Index:      i,
			Name:       sd.Name,
			Bone:       bone,
			Color:      color,
			Attachment: sd.Attachment,
			Blend:      blend,
		}
		if sd.Dark != "" {
			dark, err := parseColor(sd.Dark)
			if err != nil {
				return nil, fmt.Errorf("slot %q: %w", sd.Name, err)
			}
			slot.DarkColor = dark
			slot.HasDark = true
		}
		slots[sd.Name] = i
		data.Slots = append(data.Slots, slot)
	}

	skin := rig.NewSkin("default")
	for slotName, atts := range doc.Skin {
		slot, ok := slots[slotName]
		if !ok {
			return nil, fmt.Errorf("%w: skin: unknown slot %q", ErrInvalidSkeleton, slotName)
		}
		for name, ad := range atts {
			att, err := buildAttachment(name, &ad, atlas)
			if err != nil {
				return nil, fmt.Errorf("attachment %s/%s: %w", slotName, name, err)
			}
			skin.SetAttachment(slot, name, att)
		}
	}
	data.DefaultSkin = skin

	for _, name := range sortedKeys(doc.Events) {
		ed := doc.Events[name]
		data.Events = append(data.Events, &rig.EventData{Name: name, Int: ed.Int, Float: ed.Float, String: ed.String})
	}

	for _, name := range sortedKeys(doc.Animations) {
		ad := doc.Animations[name]
		anim, err := buildAnimation(name, &ad, data, bones, slots)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", name, err)
		}
		data.Animations = append(data.Animations, anim)
	}

	return data, nil
}

func buildAttachment(name string, ad *AttachmentDocument, atlas *rig.Atlas) (*rig.Attachment, error) {
	path := ad.Path
	if path == "" {
		path = name
	}
	region := atlas.FindRegion(path)
	if region == nil {
		return nil, fmt.Errorf("%w: %q", ErrRegionNotFound, path)
	}
	color, err := parseColor(ad.Color)
	if err != nil {
		return nil, err
	}
	att := &rig.Attachment{Name: name, Path: path, Color: color}
	if region.Page != nil {
		att.Texture = region.Page.Texture
	}

	switch ad.Type {
	case "", "region":
		att.Kind = rig.AttachmentRegion
		hw := ad.Width * scaleOr1(ad.ScaleX) / 2
		hh := ad.Height * scaleOr1(ad.ScaleY) / 2
		offset := math.Vec2{X: ad.X, Y: ad.Y}
		corners := []math.Vec2{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
		for _, c := range corners {
			att.Vertices = append(att.Vertices, c.Rotate(ad.Rotation).Add(offset))
		}
		att.UVs = []math.Vec2{
			{X: region.U, Y: region.V2},
			{X: region.U2, Y: region.V2},
			{X: region.U2, Y: region.V},
			{X: region.U, Y: region.V},
		}
		att.Triangles = []uint16{0, 1, 2, 2, 3, 0}
	case "mesh":
		att.Kind = rig.AttachmentMesh
		if len(ad.Vertices)%2 != 0 || len(ad.Vertices) != len(ad.UVs) {
			return nil, fmt.Errorf("%w: %d vertex and %d uv components", ErrInvalidSkeleton, len(ad.Vertices), len(ad.UVs))
		}
		if len(ad.Triangles)%3 != 0 {
			return nil, fmt.Errorf("%w: %d triangle indices", ErrInvalidSkeleton, len(ad.Triangles))
		}
		n := len(ad.Vertices) / 2
		for _, idx := range ad.Triangles {
			if int(idx) >= n {
				return nil, fmt.Errorf("%w: triangle index %d out of %d vertices", ErrInvalidSkeleton, idx, n)
			}
		}
		du, dv := region.U2-region.U, region.V2-region.V
		for i := 0; i < n; i++ {
			att.Vertices = append(att.Vertices, math.Vec2{X: ad.Vertices[2*i], Y: ad.Vertices[2*i+1]})
			att.UVs = append(att.UVs, math.Vec2{X: region.U + ad.UVs[2*i]*du, Y: region.V + ad.UVs[2*i+1]*dv})
		}
		att.Triangles = append([]uint16(nil), ad.Triangles...)
	default:
		return nil, fmt.Errorf("%w: unknown attachment type %q", ErrInvalidSkeleton, ad.Type)
	}
	return att, nil
}

func buildAnimation(name string, ad *AnimationDocument, data *rig.SkeletonData, bones, slots map[string]int) (*rig.Animation, error) {
	anim := &rig.Animation{Name: name}
	end := func(t float32) {
		if t > anim.Duration {
			anim.Duration = t
		}
	}

	for _, boneName := range sortedKeys(ad.Bones) {
		bone, ok := bones[boneName]
		if !ok {
			return nil, fmt.Errorf("%w: unknown bone %q", ErrInvalidSkeleton, boneName)
		}
		tl := ad.Bones[boneName]
		if len(tl.Rotate) > 0 {
			rt := &rig.RotateTimeline{Bone: bone}
			for _, k := range tl.Rotate {
				rt.Frames = append(rt.Frames, rig.RotateFrame{Time: k.Time, Angle: k.Angle})
				end(k.Time)
			}
			anim.Timelines = append(anim.Timelines, rt)
		}
		if len(tl.Translate) > 0 {
			tt := &rig.TranslateTimeline{Bone: bone}
			for _, k := range tl.Translate {
				tt.Frames = append(tt.Frames, rig.TranslateFrame{Time: k.Time, X: k.X, Y: k.Y})
				end(k.Time)
			}
			anim.Timelines = append(anim.Timelines, tt)
		}
		if len(tl.Scale) > 0 {
			st := &rig.ScaleTimeline{Bone: bone}
			for _, k := range tl.Scale {
				st.Frames = append(st.Frames, rig.ScaleFrame{Time: k.Time, X: k.X, Y: k.Y})
				end(k.Time)
			}
			anim.Timelines = append(anim.Timelines, st)
		}
	}

	for _, slotName := range sortedKeys(ad.Slots) {
		slot, ok := slots[slotName]
		if !ok {
			return nil, fmt.Errorf("%w: unknown slot %q", ErrInvalidSkeleton, slotName)
		}
		tl := ad.Slots[slotName]
		if len(tl.Attachment) > 0 {
			at := &rig.AttachmentTimeline{Slot: slot}
			for _, k := range tl.Attachment {
				if k.Name != "" && data.DefaultSkin.Attachment(slot, k.Name) == nil {
					return nil, fmt.Errorf("%w: %s/%s", rig.ErrAttachmentMissing, slotName, k.Name)
				}
				at.Frames = append(at.Frames, rig.AttachmentFrame{Time: k.Time, Name: k.Name})
				end(k.Time)
			}
			anim.Timelines = append(anim.Timelines, at)
		}
		if len(tl.Color) > 0 {
			ct := &rig.ColorTimeline{Slot: slot}
			for _, k := range tl.Color {
				c, err := parseColor(k.Color)
				if err != nil {
					return nil, err
				}
				ct.Frames = append(ct.Frames, rig.ColorFrame{Time: k.Time, Color: c})
				end(k.Time)
			}
			anim.Timelines = append(anim.Timelines, ct)
		}
	}

	if len(ad.Events) > 0 {
		et := &rig.EventTimeline{}
		for _, k := range ad.Events {
			ev := data.FindEvent(k.Name)
			if ev == nil {
				return nil, fmt.Errorf("%w: unknown event %q", ErrInvalidSkeleton, k.Name)
			}
			et.Frames = append(et.Frames, rig.EventFrame{Time: k.Time, Event: ev})
			end(k.Time)
		}
		sort.SliceStable(et.Frames, func(i, j int) bool { return et.Frames[i].Time < et.Frames[j].Time })
		anim.Events = et
	}

	return anim, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
