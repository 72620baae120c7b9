package rig

import (
	gomath "math"

	"github.com/Faultbox/skelbridge/pkg/math"
)

// Animation is a named set of timelines.
type Animation struct {
	Name      string
	Duration  float32
	Timelines []Timeline
	Events    *EventTimeline
}

// Timeline poses part of a skeleton at a point in time.
// alpha blends from the current pose (0) to the keyed pose (1).
type Timeline interface {
	Apply(s *Skeleton, time, alpha float32)
}

// segment finds the keyframe pair surrounding time.
// Before the first key it returns (0, 0, 0); after the last it returns (n-1, n-1, 0).
func segment(n int, at func(int) float32, time float32) (i0, i1 int, t float32) {
	if n == 0 || time <= at(0) {
		return 0, 0, 0
	}
	for i := 1; i < n; i++ {
		if time < at(i) {
			span := at(i) - at(i-1)
			if span <= 0 {
				return i, i, 0
			}
			return i - 1, i, (time - at(i-1)) / span
		}
	}
	return n - 1, n - 1, 0
}

// RotateFrame keys a rotation offset in degrees from the setup pose.
type RotateFrame struct {
	Time  float32
	Angle float32
}

// RotateTimeline animates a bone's rotation.
type RotateTimeline struct {
	Bone   int
	Frames []RotateFrame
}

// Apply implements Timeline.
func (tl *RotateTimeline) Apply(s *Skeleton, time, alpha float32) {
	bone := s.Bones[tl.Bone]
	if bone.pinned || len(tl.Frames) == 0 {
		return
	}
	i0, i1, t := segment(len(tl.Frames), func(i int) float32 { return tl.Frames[i].Time }, time)
	angle := math.Lerp(tl.Frames[i0].Angle, tl.Frames[i1].Angle, t)
	target := bone.Data.Rotation + angle
	bone.Rotation += (target - bone.Rotation) * alpha
}

// TranslateFrame keys a position offset from the setup pose.
type TranslateFrame struct {
	Time float32
	X, Y float32
}

// TranslateTimeline animates a bone's position.
type TranslateTimeline struct {
	Bone   int
	Frames []TranslateFrame
}

// Apply implements Timeline.
func (tl *TranslateTimeline) Apply(s *Skeleton, time, alpha float32) {
	bone := s.Bones[tl.Bone]
	if bone.pinned || len(tl.Frames) == 0 {
		return
	}
	i0, i1, t := segment(len(tl.Frames), func(i int) float32 { return tl.Frames[i].Time }, time)
	x := bone.Data.X + math.Lerp(tl.Frames[i0].X, tl.Frames[i1].X, t)
	y := bone.Data.Y + math.Lerp(tl.Frames[i0].Y, tl.Frames[i1].Y, t)
	bone.X += (x - bone.X) * alpha
	bone.Y += (y - bone.Y) * alpha
}

// ScaleFrame keys a scale factor applied to the setup scale.
type ScaleFrame struct {
	Time float32
	X, Y float32
}

// ScaleTimeline animates a bone's scale.
type ScaleTimeline struct {
	Bone   int
	Frames []ScaleFrame
}

// Apply implements Timeline.
func (tl *ScaleTimeline) Apply(s *Skeleton, time, alpha float32) {
	bone := s.Bones[tl.Bone]
	if bone.pinned || len(tl.Frames) == 0 {
		return
	}
	i0, i1, t := segment(len(tl.Frames), func(i int) float32 { return tl.Frames[i].Time }, time)
	x := bone.Data.ScaleX * math.Lerp(tl.Frames[i0].X, tl.Frames[i1].X, t)
	y := bone.Data.ScaleY * math.Lerp(tl.Frames[i0].Y, tl.Frames[i1].Y, t)
	bone.ScaleX += (x - bone.ScaleX) * alpha
	bone.ScaleY += (y - bone.ScaleY) * alpha
}

// AttachmentFrame keys the visible attachment of a slot. An empty name hides it.
type AttachmentFrame struct {
	Time float32
	Name string
}

// AttachmentTimeline switches a slot's attachment.
type AttachmentTimeline struct {
	Slot   int
	Frames []AttachmentFrame
}

// Apply implements Timeline. Attachments switch once a mix passes halfway.
func (tl *AttachmentTimeline) Apply(s *Skeleton, time, alpha float32) {
	if alpha < 0.5 || len(tl.Frames) == 0 || time < tl.Frames[0].Time {
		return
	}
	i0, _, _ := segment(len(tl.Frames), func(i int) float32 { return tl.Frames[i].Time }, time)
	slot := s.Slots[tl.Slot]
	name := tl.Frames[i0].Name
	if name == "" {
		slot.SetAttachment(nil)
		return
	}
	slot.SetAttachment(s.Skin.Attachment(tl.Slot, name))
}

// ColorFrame keys a slot tint.
type ColorFrame struct {
	Time  float32
	Color Color
}

// ColorTimeline animates a slot's tint.
type ColorTimeline struct {
	Slot   int
	Frames []ColorFrame
}

// Apply implements Timeline.
func (tl *ColorTimeline) Apply(s *Skeleton, time, alpha float32) {
	if len(tl.Frames) == 0 {
		return
	}
	i0, i1, t := segment(len(tl.Frames), func(i int) float32 { return tl.Frames[i].Time }, time)
	slot := s.Slots[tl.Slot]
	target := tl.Frames[i0].Color.Lerp(tl.Frames[i1].Color, t)
	slot.Color = slot.Color.Lerp(target, alpha)
}

// EventFrame keys a user event.
type EventFrame struct {
	Time  float32
	Event *EventData
}

// EventTimeline holds the user events of an animation, sorted by time.
type EventTimeline struct {
	Frames []EventFrame
}

// Apply poses the skeleton at time. Events are not fired here; see fire.
func (a *Animation) Apply(s *Skeleton, time, alpha float32) {
	for _, tl := range a.Timelines {
		tl.Apply(s, time, alpha)
	}
}

// localTime maps a track time onto the animation's timeline.
func (a *Animation) localTime(trackTime float32, loop bool) float32 {
	if a.Duration <= 0 {
		return 0
	}
	if loop {
		return float32(gomath.Mod(float64(trackTime), float64(a.Duration)))
	}
	if trackTime > a.Duration {
		return a.Duration
	}
	return trackTime
}

// fire calls fn for every event keyed in the track-time window (last, now].
// A negative last includes events keyed at time zero.
func (a *Animation) fire(last, now float32, loop bool, fn func(EventFrame)) {
	if a.Events == nil || len(a.Events.Frames) == 0 || now <= last {
		return
	}
	if !loop || a.Duration <= 0 {
		for _, f := range a.Events.Frames {
			if f.Time > last && f.Time <= now {
				fn(f)
			}
		}
		return
	}
	start := 0
	if last > 0 {
		start = int(last / a.Duration)
	}
	end := int(now / a.Duration)
	for k := start; k <= end; k++ {
		base := float32(k) * a.Duration
		for _, f := range a.Events.Frames {
			t := base + f.Time
			if t > last && t <= now {
				fn(f)
			}
		}
	}
}

// completed reports whether the window (last, now] reaches the end of a loop
// or of a non-looping animation.
func (a *Animation) completed(last, now float32, loop bool) bool {
	if now <= last {
		return false
	}
	if !loop {
		return last < a.Duration && now >= a.Duration
	}
	if a.Duration <= 0 || last < 0 {
		return false
	}
	return int(now/a.Duration) > int(last/a.Duration)
}
