// Package scene is the transform hierarchy of the entity world: local and
// global transforms, parent/child links and a deferred command buffer for
// structural changes made while a query is iterating.
package scene

import (
	"sync"

	"github.com/yohamta/donburi"
)

// Command is a deferred structural change.
type Command func(w donburi.World)

// Commands buffers structural changes. Push is safe from concurrent workers;
// Apply runs the commands in push order.
type Commands struct {
	mu  sync.Mutex
	ops []Command
}

// Push queues a command.
func (c *Commands) Push(cmd Command) {
	c.mu.Lock()
	c.ops = append(c.ops, cmd)
	c.mu.Unlock()
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ops)
}

// Apply runs and clears the queue. Commands pushed while applying run in the
// same call.
func (c *Commands) Apply(w donburi.World) {
	for {
		c.mu.Lock()
		ops := c.ops
		c.ops = nil
		c.mu.Unlock()
		if len(ops) == 0 {
			return
		}
		for _, op := range ops {
			op(w)
		}
	}
}
