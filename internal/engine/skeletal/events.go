package skeletal

import (
	"fmt"

	"github.com/yohamta/donburi"

	"github.com/Faultbox/skelbridge/pkg/rig"
)

// EventKind tags an Event.
type EventKind uint8

const (
	EventStart EventKind = iota
	EventInterrupt
	EventEnd
	EventComplete
	EventDispose
	EventNamed
)

var eventKindNames = [...]string{"start", "interrupt", "end", "complete", "dispose", "named"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is an animation lifecycle or user event. Name is the animation name
// for the track lifecycle kinds and the event name for EventNamed. Dispose
// carries no name.
type Event struct {
	Kind   EventKind
	Entity donburi.Entity
	Name   string
}

// ReadyEvent reports that an entity's controller, mesh slots and bone
// proxies exist.
type ReadyEvent struct {
	Entity donburi.Entity
}

// listen returns a listener that queues the state's events for entity.
func (p *Plugin) listen(entity donburi.Entity) rig.Listener {
	return func(_ *rig.AnimationState, typ rig.EventType, entry *rig.TrackEntry, ev *rig.Event) {
		e := Event{Entity: entity}
		switch typ {
		case rig.EventStart:
			e.Kind = EventStart
		case rig.EventInterrupt:
			e.Kind = EventInterrupt
		case rig.EventEnd:
			e.Kind = EventEnd
		case rig.EventComplete:
			e.Kind = EventComplete
		case rig.EventDispose:
			p.queue.Push(Event{Kind: EventDispose, Entity: entity})
			return
		case rig.EventCustom:
			if ev == nil || ev.Data == nil {
				return
			}
			p.queue.Push(Event{Kind: EventNamed, Entity: entity, Name: ev.Data.Name})
			return
		default:
			return
		}
		if entry != nil && entry.Animation() != nil {
			e.Name = entry.Animation().Name
		}
		p.queue.Push(e)
	}
}
