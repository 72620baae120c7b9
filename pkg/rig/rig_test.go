package rig

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skelbridge/pkg/math"
)

func testData() *SkeletonData {
	step := &EventData{Name: "step", Int: 3}
	skin := NewSkin("default")
	skin.SetAttachment(0, "body", &Attachment{
		Name:      "body",
		Kind:      AttachmentRegion,
		Vertices:  []math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}},
		UVs:       []math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}},
		Triangles: []uint16{0, 1, 2, 2, 3, 0},
		Color:     White,
		Texture:   7,
	})
	return &SkeletonData{
		Name: "test",
		Bones: []*BoneData{
			{Index: 0, Name: "root", Parent: -1, ScaleX: 1, ScaleY: 1},
			{Index: 1, Name: "arm", Parent: 0, X: 10, ScaleX: 1, ScaleY: 1},
		},
		Slots: []*SlotData{
			{Index: 0, Name: "body", Bone: 1, Color: White, Attachment: "body"},
		},
		DefaultSkin: skin,
		Events:      []*EventData{step},
		Animations: []*Animation{
			{
				Name:     "wave",
				Duration: 1,
				Timelines: []Timeline{
					&RotateTimeline{Bone: 1, Frames: []RotateFrame{{Time: 0, Angle: 0}, {Time: 1, Angle: 90}}},
				},
				Events: &EventTimeline{Frames: []EventFrame{{Time: 0.5, Event: step}}},
			},
			{Name: "idle", Duration: 2},
		},
	}
}

type recorded struct {
	typ  EventType
	anim string
	name string
}

func record(state *AnimationState) *[]recorded {
	var out []recorded
	state.SetListener(func(_ *AnimationState, typ EventType, entry *TrackEntry, ev *Event) {
		r := recorded{typ: typ}
		if entry != nil {
			r.anim = entry.Animation().Name
		}
		if ev != nil {
			r.name = ev.Data.Name
		}
		out = append(out, r)
	})
	return &out
}

func TestBoneWorldTransform(t *testing.T) {
	sk := NewSkeleton(testData())
	sk.Bones[0].Rotation = 90
	sk.UpdateWorldTransform()

	got := sk.Bones[1].WorldPosition()
	if gomath.Abs(float64(got.X)) > 1e-4 || gomath.Abs(float64(got.Y-10)) > 1e-4 {
		t.Errorf("WorldPosition() = %v, want (0, 10)", got)
	}
}

func TestSetAnimationEvents(t *testing.T) {
	state := NewAnimationState(NewStateData(testData()))
	events := record(state)

	if _, err := state.SetAnimation(0, "wave", false); err != nil {
		t.Fatalf("SetAnimation: %v", err)
	}
	if _, err := state.SetAnimation(0, "idle", true); err != nil {
		t.Fatalf("SetAnimation: %v", err)
	}

	want := []recorded{
		{typ: EventStart, anim: "wave"},
		{typ: EventInterrupt, anim: "wave"},
		{typ: EventEnd, anim: "wave"},
		{typ: EventStart, anim: "idle"},
	}
	if len(*events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(*events), *events, len(want))
	}
	for i := range want {
		if (*events)[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, (*events)[i], want[i])
		}
	}
}

func TestSetAnimationUnknown(t *testing.T) {
	state := NewAnimationState(NewStateData(testData()))
	if _, err := state.SetAnimation(0, "nope", false); err == nil {
		t.Error("expected error for unknown animation")
	}
}

func TestCustomEventFiresOnce(t *testing.T) {
	data := testData()
	c := NewController(data, NewStateData(data), Settings{})
	events := record(c.AnimationState)
	if _, err := c.AnimationState.SetAnimation(0, "wave", false); err != nil {
		t.Fatal(err)
	}

	c.Update(0.75)
	c.Update(0.1)

	var named, completes int
	for _, e := range *events {
		switch e.typ {
		case EventCustom:
			named++
			if e.name != "step" {
				t.Errorf("event name = %q, want step", e.name)
			}
		case EventComplete:
			completes++
		}
	}
	if named != 1 {
		t.Errorf("got %d custom events, want 1", named)
	}
	if completes != 0 {
		t.Errorf("got %d complete events before the end, want 0", completes)
	}

	c.Update(0.5)
	completes = 0
	for _, e := range *events {
		if e.typ == EventComplete {
			completes++
		}
	}
	if completes != 1 {
		t.Errorf("got %d complete events, want 1", completes)
	}
}

func TestLoopingEventsFireEachLoop(t *testing.T) {
	data := testData()
	c := NewController(data, NewStateData(data), Settings{})
	events := record(c.AnimationState)
	if _, err := c.AnimationState.SetAnimation(0, "wave", true); err != nil {
		t.Fatal(err)
	}
	c.Update(0)
	c.Update(2.6)

	var named int
	for _, e := range *events {
		if e.typ == EventCustom {
			named++
		}
	}
	if named != 3 {
		t.Errorf("got %d custom events over 2.6 loops, want 3", named)
	}
}

func TestZeroDeltaDoesNotAdvance(t *testing.T) {
	data := testData()
	c := NewController(data, NewStateData(data), Settings{})
	entry, err := c.AnimationState.SetAnimation(0, "wave", false)
	if err != nil {
		t.Fatal(err)
	}
	c.Update(0)
	c.Update(-1)
	if entry.TrackTime() != 0 {
		t.Errorf("TrackTime() = %v, want 0", entry.TrackTime())
	}
}

func TestZeroDeltaFiresNoEvents(t *testing.T) {
	data := testData()
	data.Animations = append(data.Animations, &Animation{
		Name:   "cue",
		Events: &EventTimeline{Frames: []EventFrame{{Time: 0, Event: data.Events[0]}}},
	})
	c := NewController(data, NewStateData(data), Settings{})
	events := record(c.AnimationState)
	if _, err := c.AnimationState.SetAnimation(0, "cue", false); err != nil {
		t.Fatal(err)
	}

	c.Update(0)
	c.Update(-1)
	if len(*events) != 1 || (*events)[0].typ != EventStart {
		t.Fatalf("events after zero delta = %+v, want only start", *events)
	}

	c.Update(0.1)
	var named, completes int
	for _, e := range *events {
		switch e.typ {
		case EventCustom:
			named++
		case EventComplete:
			completes++
		}
	}
	if named != 1 || completes != 1 {
		t.Errorf("after first advance named/complete = %d/%d, want 1/1", named, completes)
	}
}

func TestPinnedBoneIgnoresTimelines(t *testing.T) {
	data := testData()
	c := NewController(data, NewStateData(data), Settings{})
	if _, err := c.AnimationState.SetAnimation(0, "wave", false); err != nil {
		t.Fatal(err)
	}
	arm := c.Skeleton.FindBone("arm")
	arm.SetPinned(true)
	arm.Rotation = 33

	c.Update(0.5)
	if arm.Rotation != 33 {
		t.Errorf("pinned Rotation = %v, want 33", arm.Rotation)
	}

	arm.SetPinned(false)
	c.Update(0.5)
	if gomath.Abs(float64(arm.Rotation-90)) > 1e-3 {
		t.Errorf("released Rotation = %v, want 90", arm.Rotation)
	}
}

func TestCrossfadeEndsPrevious(t *testing.T) {
	data := testData()
	stateData := NewStateData(data)
	if err := stateData.SetMix("wave", "idle", 0.2); err != nil {
		t.Fatal(err)
	}
	state := NewAnimationState(stateData)
	events := record(state)

	state.SetAnimation(0, "wave", true)
	entry, _ := state.SetAnimation(0, "idle", true)
	if entry.MixingFrom() == nil {
		t.Fatal("expected idle to mix from wave")
	}
	state.Update(0.1)
	if entry.MixingFrom() == nil {
		t.Fatal("mix ended early")
	}
	state.Update(0.15)
	if entry.MixingFrom() != nil {
		t.Fatal("mix did not end")
	}

	last := (*events)[len(*events)-1]
	if last.typ != EventEnd || last.anim != "wave" {
		t.Errorf("last event = %+v, want end of wave", last)
	}
}

func TestAddAnimationQueues(t *testing.T) {
	state := NewAnimationState(NewStateData(testData()))
	state.SetAnimation(0, "wave", false)
	if _, err := state.AddAnimation(0, "idle", true, 0); err != nil {
		t.Fatal(err)
	}

	state.Update(0.9)
	if got := state.Current(0).Animation().Name; got != "wave" {
		t.Errorf("current = %s, want wave", got)
	}
	state.Update(0.2)
	cur := state.Current(0)
	if cur.Animation().Name != "idle" {
		t.Fatalf("current = %s, want idle", cur.Animation().Name)
	}
	if gomath.Abs(float64(cur.TrackTime()-0.1)) > 1e-4 {
		t.Errorf("TrackTime() = %v, want 0.1", cur.TrackTime())
	}
}

func TestDisposeFiresOnce(t *testing.T) {
	state := NewAnimationState(NewStateData(testData()))
	events := record(state)
	state.SetAnimation(0, "wave", true)

	state.Dispose()
	state.Dispose()

	var disposes int
	for _, e := range *events {
		if e.typ == EventDispose {
			disposes++
			if e.anim != "" {
				t.Errorf("dispose carried animation %q", e.anim)
			}
		}
	}
	if disposes != 1 {
		t.Errorf("got %d dispose events, want 1", disposes)
	}
}

func TestRenderablesWinding(t *testing.T) {
	data := testData()
	tests := []struct {
		cull CullDirection
		want []uint16
	}{
		{CullClockwise, []uint16{0, 1, 2, 2, 3, 0}},
		{CullCounterClockwise, []uint16{2, 1, 0, 0, 3, 2}},
	}
	for _, tt := range tests {
		c := NewController(data, NewStateData(data), Settings{CullDirection: tt.cull})
		c.Update(0)
		r := c.Renderables()
		if len(r) != 1 {
			t.Fatalf("got %d renderables, want 1", len(r))
		}
		for i := range tt.want {
			if r[0].Indices[i] != tt.want[i] {
				t.Errorf("cull %d: Indices = %v, want %v", tt.cull, r[0].Indices, tt.want)
				break
			}
		}
		if r[0].Vertices[0] != [2]float32{9, -1} {
			t.Errorf("Vertices[0] = %v, want [9 -1]", r[0].Vertices[0])
		}
		if r[0].Texture != 7 {
			t.Errorf("Texture = %d, want 7", r[0].Texture)
		}
	}
}

func TestRenderablesSkipHiddenSlots(t *testing.T) {
	data := testData()
	c := NewController(data, NewStateData(data), Settings{})
	if err := c.Skeleton.SetAttachment("body", ""); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Renderables()); got != 0 {
		t.Errorf("got %d renderables, want 0", got)
	}
}

func TestPremultipliedColor(t *testing.T) {
	data := testData()
	c := NewController(data, NewStateData(data), Settings{PremultipliedAlpha: true})
	c.Skeleton.Slots[0].Color = Color{1, 1, 1, 0.5}
	r := c.Renderables()[0]
	if r.Color != (Color{0.5, 0.5, 0.5, 0.5}) {
		t.Errorf("Color = %v, want premultiplied", r.Color)
	}
	if !r.PremultipliedAlpha {
		t.Error("PremultipliedAlpha = false")
	}
}

func TestParseBlendMode(t *testing.T) {
	for i, name := range []string{"normal", "additive", "multiply", "screen"} {
		got, err := ParseBlendMode(name)
		if err != nil || got != BlendMode(i) {
			t.Errorf("ParseBlendMode(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseBlendMode("overlay"); err == nil {
		t.Error("expected error for unknown blend mode")
	}
}
