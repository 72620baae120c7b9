package rig

import "fmt"

// EventType tags a notification delivered to a Listener.
type EventType uint8

const (
	EventStart EventType = iota
	EventInterrupt
	EventEnd
	EventComplete
	EventDispose
	EventCustom
)

var eventTypeNames = [...]string{"start", "interrupt", "end", "complete", "dispose", "event"}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// Event is a user event fired from an animation's event timeline.
type Event struct {
	Data   *EventData
	Time   float32
	Int    int
	Float  float32
	String string
}

// Listener receives track lifecycle notifications and user events.
// entry is nil for EventDispose; ev is non-nil only for EventCustom.
// Listeners run synchronously inside SetAnimation, Update, Apply and Dispose.
type Listener func(state *AnimationState, typ EventType, entry *TrackEntry, ev *Event)

type mixKey struct {
	from, to *Animation
}

// StateData holds crossfade durations between pairs of animations.
type StateData struct {
	DefaultMix float32

	skeleton *SkeletonData
	mixes    map[mixKey]float32
}

// NewStateData creates mix settings for a skeleton.
func NewStateData(data *SkeletonData) *StateData {
	return &StateData{skeleton: data, mixes: make(map[mixKey]float32)}
}

// SkeletonData returns the skeleton the mixes refer to.
func (d *StateData) SkeletonData() *SkeletonData { return d.skeleton }

// SetMix sets the crossfade duration from one animation to another.
func (d *StateData) SetMix(from, to string, duration float32) error {
	a := d.skeleton.FindAnimation(from)
	if a == nil {
		return fmt.Errorf("%w: %s", ErrAnimationNotFound, from)
	}
	b := d.skeleton.FindAnimation(to)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrAnimationNotFound, to)
	}
	d.mixes[mixKey{a, b}] = duration
	return nil
}

// Mix returns the crossfade duration between two animations.
func (d *StateData) Mix(from, to *Animation) float32 {
	if v, ok := d.mixes[mixKey{from, to}]; ok {
		return v
	}
	return d.DefaultMix
}

// TrackEntry is one animation playing (or queued) on a track.
type TrackEntry struct {
	animation *Animation
	track     int
	loop      bool
	delay     float32
	timeScale float32

	trackTime float32
	lastTime  float32

	mixTime     float32
	mixDuration float32
	mixingFrom  *TrackEntry
	next        *TrackEntry
}

// Animation returns the animation played by the entry.
func (e *TrackEntry) Animation() *Animation { return e.animation }

// TrackIndex returns the track the entry plays on.
func (e *TrackEntry) TrackIndex() int { return e.track }

// Loop reports whether the entry loops.
func (e *TrackEntry) Loop() bool { return e.loop }

// TrackTime returns the seconds elapsed since the entry started.
func (e *TrackEntry) TrackTime() float32 { return e.trackTime }

// MixDuration returns the crossfade duration from the previous entry.
func (e *TrackEntry) MixDuration() float32 { return e.mixDuration }

// MixingFrom returns the entry being faded out, or nil.
func (e *TrackEntry) MixingFrom() *TrackEntry { return e.mixingFrom }

// SetTimeScale changes the playback speed of this entry only.
func (e *TrackEntry) SetTimeScale(s float32) { e.timeScale = s }

// AnimationState plays animations on numbered tracks and reports lifecycle
// events to its listener.
type AnimationState struct {
	TimeScale float32

	data     *StateData
	tracks   []*TrackEntry
	listener Listener
	disposed bool
}

// NewAnimationState creates an empty state.
func NewAnimationState(data *StateData) *AnimationState {
	return &AnimationState{TimeScale: 1, data: data}
}

// Data returns the mix settings.
func (s *AnimationState) Data() *StateData { return s.data }

// SetListener replaces the listener.
func (s *AnimationState) SetListener(l Listener) { s.listener = l }

// Current returns the entry playing on a track, or nil.
func (s *AnimationState) Current(track int) *TrackEntry {
	if track < 0 || track >= len(s.tracks) {
		return nil
	}
	return s.tracks[track]
}

// Disposed reports whether Dispose has run.
func (s *AnimationState) Disposed() bool { return s.disposed }

func (s *AnimationState) emit(typ EventType, entry *TrackEntry, ev *Event) {
	if s.listener != nil {
		s.listener(s, typ, entry, ev)
	}
}

func (s *AnimationState) newEntry(track int, name string, loop bool) (*TrackEntry, error) {
	if track < 0 {
		return nil, fmt.Errorf("invalid track %d", track)
	}
	anim := s.data.skeleton.FindAnimation(name)
	if anim == nil {
		return nil, fmt.Errorf("%w: %s", ErrAnimationNotFound, name)
	}
	return &TrackEntry{animation: anim, track: track, loop: loop, timeScale: 1, lastTime: -1}, nil
}

// SetAnimation plays an animation on a track, replacing the current one and
// discarding anything queued. The replaced entry is interrupted and crossfaded
// out if a mix is configured, otherwise ended immediately.
func (s *AnimationState) SetAnimation(track int, name string, loop bool) (*TrackEntry, error) {
	if s.disposed {
		return nil, fmt.Errorf("animation state disposed")
	}
	entry, err := s.newEntry(track, name, loop)
	if err != nil {
		return nil, err
	}
	s.setCurrent(track, entry)
	return entry, nil
}

// AddAnimation queues an animation after the last entry on a track. delay is
// measured from the start of the preceding entry; zero or negative values are
// relative to the end of the preceding animation. With an empty track the
// animation starts immediately.
func (s *AnimationState) AddAnimation(track int, name string, loop bool, delay float32) (*TrackEntry, error) {
	if s.disposed {
		return nil, fmt.Errorf("animation state disposed")
	}
	entry, err := s.newEntry(track, name, loop)
	if err != nil {
		return nil, err
	}
	last := s.Current(track)
	if last == nil {
		s.setCurrent(track, entry)
		return entry, nil
	}
	for last.next != nil {
		last = last.next
	}
	if delay <= 0 {
		delay += last.animation.Duration
		if delay < 0 {
			delay = 0
		}
	}
	entry.delay = delay
	last.next = entry
	return entry, nil
}

func (s *AnimationState) setCurrent(track int, entry *TrackEntry) {
	for len(s.tracks) <= track {
		s.tracks = append(s.tracks, nil)
	}
	if cur := s.tracks[track]; cur != nil {
		if from := cur.mixingFrom; from != nil {
			cur.mixingFrom = nil
			s.emit(EventEnd, from, nil)
		}
		cur.next = nil
		s.emit(EventInterrupt, cur, nil)
		entry.mixDuration = s.data.Mix(cur.animation, entry.animation)
		if entry.mixDuration > 0 {
			entry.mixingFrom = cur
		} else {
			s.emit(EventEnd, cur, nil)
		}
	}
	s.tracks[track] = entry
	s.emit(EventStart, entry, nil)
}

// ClearTrack ends the entries on a track. The pose is left as it is.
func (s *AnimationState) ClearTrack(track int) {
	cur := s.Current(track)
	if cur == nil {
		return
	}
	s.tracks[track] = nil
	if from := cur.mixingFrom; from != nil {
		cur.mixingFrom = nil
		s.emit(EventEnd, from, nil)
	}
	s.emit(EventEnd, cur, nil)
}

// ClearTracks ends every track.
func (s *AnimationState) ClearTracks() {
	for i := range s.tracks {
		s.ClearTrack(i)
	}
	s.tracks = s.tracks[:0]
}

// Update advances every track by dt seconds. Zero or negative dt does nothing.
func (s *AnimationState) Update(dt float32) {
	if s.disposed || dt <= 0 {
		return
	}
	dt *= s.TimeScale
	for i, cur := range s.tracks {
		if cur == nil {
			continue
		}
		cur.trackTime += dt * cur.timeScale
		if from := cur.mixingFrom; from != nil {
			from.trackTime += dt * from.timeScale
			cur.mixTime += dt
			if cur.mixTime >= cur.mixDuration {
				cur.mixingFrom = nil
				s.emit(EventEnd, from, nil)
			}
		}
		if next := cur.next; next != nil && cur.trackTime >= next.delay {
			overshoot := cur.trackTime - next.delay
			s.setCurrent(i, next)
			next.trackTime = overshoot
		}
	}
}

// Apply poses the skeleton from every track and fires user and complete
// events for the time elapsed since the previous Apply.
func (s *AnimationState) Apply(sk *Skeleton) {
	s.apply(sk, true)
}

// Pose applies every track to the skeleton without firing events. The event
// window stays open until the next Apply.
func (s *AnimationState) Pose(sk *Skeleton) {
	s.apply(sk, false)
}

func (s *AnimationState) apply(sk *Skeleton, fire bool) {
	if s.disposed {
		return
	}
	sk.resetPose()
	for _, cur := range s.tracks {
		if cur == nil {
			continue
		}
		alpha := float32(1)
		if from := cur.mixingFrom; from != nil {
			from.animation.Apply(sk, from.animation.localTime(from.trackTime, from.loop), 1)
			if fire {
				from.lastTime = from.trackTime
			}
			if cur.mixDuration > 0 {
				alpha = cur.mixTime / cur.mixDuration
				if alpha > 1 {
					alpha = 1
				}
			}
		}
		anim := cur.animation
		anim.Apply(sk, anim.localTime(cur.trackTime, cur.loop), alpha)
		if !fire {
			continue
		}

		last, now := cur.lastTime, cur.trackTime
		cur.lastTime = now
		anim.fire(last, now, cur.loop, func(f EventFrame) {
			s.emit(EventCustom, cur, &Event{
				Data:   f.Event,
				Time:   f.Time,
				Int:    f.Event.Int,
				Float:  f.Event.Float,
				String: f.Event.String,
			})
		})
		if anim.completed(last, now, cur.loop) {
			s.emit(EventComplete, cur, nil)
		}
	}
}

// Dispose ends every track, then fires a single EventDispose and detaches the
// listener. Calling it again does nothing.
func (s *AnimationState) Dispose() {
	if s.disposed {
		return
	}
	s.ClearTracks()
	s.emit(EventDispose, nil, nil)
	s.disposed = true
	s.listener = nil
}
