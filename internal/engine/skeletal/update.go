package skeletal

import (
	"context"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var controllers = donburi.NewQuery(filter.Contains(Controller))

// Update installs event listeners on controllers announced ready this tick,
// advances every controller by dt and publishes the events they fired.
// Events are published only after all controllers have advanced.
func (p *Plugin) Update(_ context.Context, dt float32) error {
	p.events.Reset()

	for _, ev := range p.ready.Events() {
		if !p.world.Valid(ev.Entity) {
			continue
		}
		entry := p.world.Entry(ev.Entity)
		if !entry.HasComponent(Controller) {
			continue
		}
		cd := Controller.Get(entry)
		if cd.listening {
			continue
		}
		cd.Controller.AnimationState.SetListener(p.listen(ev.Entity))
		cd.listening = true
	}

	controllers.Each(p.world, func(entry *donburi.Entry) {
		Controller.Get(entry).Controller.Update(dt)
	})

	p.events.Send(p.queue.Drain()...)
	return nil
}
